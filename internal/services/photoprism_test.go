package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPhotoService(t *testing.T) {
	t.Run("AddLabel", func(t *testing.T) {
		t.Run("posts label name to item endpoint", func(t *testing.T) {
			var gotPath, gotMethod, gotAuth string
			var gotBody map[string]string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotMethod = r.Method
				gotAuth = r.Header.Get("Authorization")
				body, _ := io.ReadAll(r.Body)
				json.Unmarshal(body, &gotBody)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			svc := NewPhotoService(server.URL, "sess123")
			if err := svc.AddLabel(context.Background(), "pqbcf5j", "sunset"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if gotMethod != http.MethodPost {
				t.Errorf("expected POST, got %s", gotMethod)
			}
			if gotPath != "/items/pqbcf5j/label" {
				t.Errorf("expected path /items/pqbcf5j/label, got %s", gotPath)
			}
			if gotAuth != "Bearer sess123" {
				t.Errorf("expected bearer token header, got %q", gotAuth)
			}
			if gotBody["name"] != "sunset" {
				t.Errorf("expected label name sunset in body, got %v", gotBody)
			}
		})

		t.Run("non-2xx surfaces as StatusError", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			svc := NewPhotoService(server.URL, "sess123")
			err := svc.AddLabel(context.Background(), "pqbcf5j", "sunset")

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.StatusCode != http.StatusForbidden {
				t.Errorf("expected status 403, got %d", statusErr.StatusCode)
			}
		})
	})

	t.Run("RemoveLabel", func(t *testing.T) {
		t.Run("deletes label by id", func(t *testing.T) {
			var gotPath, gotMethod string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotMethod = r.Method
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			svc := NewPhotoService(server.URL, "sess123")
			if err := svc.RemoveLabel(context.Background(), "pqbcf5j", 42); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if gotMethod != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", gotMethod)
			}
			if gotPath != "/items/pqbcf5j/label/42" {
				t.Errorf("expected path /items/pqbcf5j/label/42, got %s", gotPath)
			}
		})

		t.Run("404 surfaces as StatusError with code", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			svc := NewPhotoService(server.URL, "sess123")
			err := svc.RemoveLabel(context.Background(), "pqbcf5j", 42)

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.StatusCode != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", statusErr.StatusCode)
			}
		})
	})

	t.Run("GetPhoto", func(t *testing.T) {
		t.Run("decodes photo detail with labels", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/items/pqbcf5j" {
					t.Errorf("expected path /items/pqbcf5j, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(Photo{
					UID:   "pqbcf5j",
					Title: "Harbor at dusk",
					Labels: []Label{
						{ID: 7, Name: "Sunset", Slug: "sunset"},
						{ID: 12, Name: "Harbor", Slug: "harbor"},
					},
				})
			}))
			defer server.Close()

			svc := NewPhotoService(server.URL, "sess123")
			photo, err := svc.GetPhoto(context.Background(), "pqbcf5j")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if photo.UID != "pqbcf5j" {
				t.Errorf("expected UID pqbcf5j, got %s", photo.UID)
			}
			if len(photo.Labels) != 2 {
				t.Fatalf("expected 2 labels, got %d", len(photo.Labels))
			}
			if photo.Labels[0].ID != 7 || photo.Labels[0].Slug != "sunset" {
				t.Errorf("unexpected first label: %+v", photo.Labels[0])
			}
		})

		t.Run("malformed body returns decode error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			svc := NewPhotoService(server.URL, "sess123")
			if _, err := svc.GetPhoto(context.Background(), "pqbcf5j"); err == nil {
				t.Error("expected decode error for malformed body")
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		svc := NewPhotoService("http://localhost:2342", "")
		if svc.Name() != "PhotoPrism" {
			t.Errorf("expected PhotoPrism, got %s", svc.Name())
		}
	})
}
