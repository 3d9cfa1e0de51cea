// Utilities for parsing cURL commands copied from browser devtools.
//
// The photo server's session token never leaves the browser on its own; the
// simplest capture path is "Copy as cURL" on any authenticated request.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and extracts headers.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts headers.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var cookie string

	headerRegex := regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	matches := headerRegex.FindAllStringSubmatch(curlCmd, -1)

	for _, match := range matches {
		var headerLine string
		if match[1] != "" {
			headerLine = match[1]
		} else {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if strings.ToLower(key) == "cookie" {
				cookie = value
			} else {
				headers[key] = value
			}
		}
	}

	cookieRegex := regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
	cookieMatches := cookieRegex.FindStringSubmatch(curlCmd)
	if len(cookieMatches) > 1 {
		if cookieMatches[1] != "" {
			cookie = cookieMatches[1]
		} else {
			cookie = cookieMatches[2]
		}
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("no headers found in curl command")
	}

	return &CurlHeaders{
		Headers: headers,
		Cookie:  cookie,
	}, nil
}

// SessionToken extracts the photo server session token from the parsed headers.
//
// Checks the X-Session-ID header first (PhotoPrism convention), then a bearer
// Authorization header. Returns [ErrNoAuthToken] when neither is present.
func (c *CurlHeaders) SessionToken() (string, error) {
	for key, value := range c.Headers {
		if strings.EqualFold(key, "X-Session-ID") && value != "" {
			return value, nil
		}
	}

	for key, value := range c.Headers {
		if strings.EqualFold(key, "Authorization") {
			token := strings.TrimSpace(strings.TrimPrefix(value, "Bearer"))
			if token != "" {
				return token, nil
			}
		}
	}

	return "", fmt.Errorf("%w: no session header in curl command", ErrNoAuthToken)
}
