package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
)

type addPayload struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required,max=120"`
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		body    string
		wantErr bool
		field   string
	}{
		"valid":          {body: `{"product_id":"p1","name":"Arroz"}`},
		"empty body":     {body: ``, wantErr: true},
		"unknown field":  {body: `{"product_id":"p1","name":"Arroz","extra":1}`, wantErr: true},
		"missing field":  {body: `{"name":"Arroz"}`, wantErr: true, field: "product_id"},
		"trailing value": {body: `{"product_id":"p1","name":"Arroz"} {}`, wantErr: true},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			var dest addPayload
			err := DecodeJSONBody(req, &dest)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dest.ProductID != "p1" {
					t.Fatalf("unexpected product id %q", dest.ProductID)
				}
				return
			}
			if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if tc.field != "" {
				details, _ := pkgerrors.As(err).Details().(map[string]string)
				if _, ok := details[tc.field]; !ok {
					t.Fatalf("expected detail for %s, got %v", tc.field, details)
				}
			}
		})
	}
}

func TestParseQueryInt(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?limit=7&bad=x&big=500", nil)

	if v, err := ParseQueryInt(req, "limit", 20, 1, 100); err != nil || v != 7 {
		t.Fatalf("expected 7, got %d (%v)", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 20, 1, 100); err != nil || v != 20 {
		t.Fatalf("expected default, got %d (%v)", v, err)
	}
	if _, err := ParseQueryInt(req, "bad", 20, 1, 100); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for non numeric value")
	}
	if _, err := ParseQueryInt(req, "big", 20, 1, 100); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for out of range value")
	}
}

func TestParseQueryText(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?q=%20feij%C3%A3o%20&long="+strings.Repeat("a", 65), nil)

	if v, err := ParseQueryText(req, "q", 64); err != nil || v != "feijão" {
		t.Fatalf("expected trimmed text, got %q (%v)", v, err)
	}
	if _, err := ParseQueryText(req, "long", 64); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for long value")
	}
}
