//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_AppendAndListCategories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	credsFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	credsJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON")
	if credsFile == "" && credsJSON == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, Options{
		SpreadsheetID:   spreadsheetID,
		CredentialsFile: credsFile,
		CredentialsJSON: credsJSON,
	}, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ref, err := client.AppendRow(ctx, ports.Row{
		EntryID:     "integration-" + time.Now().Format("150405"),
		Kind:        core.KindExpense,
		Date:        core.Today(),
		Label:       "Other",
		Description: "integration test row",
		Amount:      decimal.RequireFromString("0.01"),
	})
	if err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	t.Logf("appended %s", ref)

	cats, err := client.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	t.Logf("categories: %v", cats)
}
