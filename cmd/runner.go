package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/thornmill/relabel/internal/services"
	"github.com/thornmill/relabel/internal/shared"
	"github.com/thornmill/relabel/internal/store"
	"github.com/thornmill/relabel/internal/tasks"
	"github.com/thornmill/relabel/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	service    services.Service
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Service overrides the PhotoPrism client built from config; tests inject
// mocks through it.
type RunnerOpts struct {
	Config     *shared.Config
	Service    services.Service
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		service:    opts.Service,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    ui.DefaultPalette(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		applyCommand, removeCommand, retryCommand, historyCommand, failuresCommand, labelsCommand, setupCommand, apiCommand, clearCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openEngine builds a batch engine over the configured database and server.
//
// Migrations run on every open; they are idempotent and keep `setup database`
// optional. The returned cleanup closes the database.
func (r *Runner) openEngine(token string) (*tasks.Engine, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	st, err := store.NewStore(db, r.config.Server.URL)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	svc := r.service
	if svc == nil {
		api := services.NewAPIService(r.config.Server.URL, token, r.httpClient)
		svc = services.NewPhotoServiceWithAPI(api)
	}

	return tasks.NewEngine(svc, st), func() { db.Close() }, nil
}

// resolveToken picks the session token for a batch, in order of preference:
// an explicit flag, the selection's captured token, the configured token, and
// finally a saved cURL command at server.headers_path.
func (r *Runner) resolveToken(flagToken, selectionToken string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if selectionToken != "" {
		return selectionToken, nil
	}
	if r.config.Server.Token != "" {
		return r.config.Server.Token, nil
	}

	if r.config.Server.HeadersPath != "" {
		headers, err := shared.ParseCurlFile(r.config.Server.HeadersPath)
		if err != nil {
			return "", fmt.Errorf("failed to parse saved headers: %w", err)
		}
		return headers.SessionToken()
	}

	return "", shared.ErrNoAuthToken
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
