package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapKeepsCauseAndCode(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("dial tcp: refused")
	err := fmt.Errorf("save cart: %w", Wrap(CodeDependency, cause, "persist cart"))

	if CodeOf(err) != CodeDependency {
		t.Fatalf("expected dependency code, got %s", CodeOf(err))
	}
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through the chain")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatal("untyped errors should report internal")
	}
}

func TestSentinelMatchingByCodeAndMessage(t *testing.T) {
	t.Parallel()

	sentinel := New(CodePrecondition, "cart is empty")
	wrapped := fmt.Errorf("submit: %w", New(CodePrecondition, "cart is empty"))
	if !stdErrors.Is(wrapped, sentinel) {
		t.Fatal("expected equal code+message to match")
	}
	if stdErrors.Is(wrapped, New(CodePrecondition, "other")) {
		t.Fatal("different message must not match")
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "kv_entries_pkey", TableName: "kv_entries"}
	dump := Dump(Wrap(CodeDependency, pgErr, "save entry"))

	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if dump.Postgres == nil || dump.Postgres.Code != "23505" || dump.Postgres.Constraint != "kv_entries_pkey" || dump.Postgres.Table != "kv_entries" {
		t.Fatalf("unexpected pg details %+v", dump.Postgres)
	}
	if dump.Redis != "" {
		t.Fatalf("unexpected redis detail %q", dump.Redis)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
}

func TestDumpUntypedHasNoCode(t *testing.T) {
	t.Parallel()

	dump := Dump(fmt.Errorf("plain"))
	if dump.Code != "" || dump.Postgres != nil {
		t.Fatalf("unexpected dump %+v", dump)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatal("nil error must dump empty")
	}
}

func TestPublicMessage(t *testing.T) {
	t.Parallel()

	if got := PublicMessage(New(CodeConflict, "Price changed")); got != "Price changed" {
		t.Fatalf("expected exposed message, got %q", got)
	}
	if got := PublicMessage(Wrap(CodeDependency, fmt.Errorf("dial tcp"), "redis get")); got != "dependency unavailable" {
		t.Fatalf("expected generic dependency text, got %q", got)
	}
	if got := PublicMessage(fmt.Errorf("boom")); got != "internal error" {
		t.Fatalf("expected internal text, got %q", got)
	}
	if got := Newf(CodeNotFound, "product %s not found", "p1").Message(); got != "product p1 not found" {
		t.Fatalf("unexpected Newf message %q", got)
	}
}
