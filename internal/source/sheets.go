package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetsRange is read when no range is configured.
const DefaultSheetsRange = "Tracker!A:Z"

const googleTokenURI = "https://oauth2.googleapis.com/token"

// GoogleSheets reads a range of a spreadsheet through the Sheets API.
// The first row of the range is the header row.
type GoogleSheets struct {
	SpreadsheetID string
	Range         string
	opts          []option.ClientOption
}

// NewGoogleSheets returns a source for the given spreadsheet. The client
// options carry credentials; see CredentialOptions.
func NewGoogleSheets(spreadsheetID, rng string, opts ...option.ClientOption) *GoogleSheets {
	if rng == "" {
		rng = DefaultSheetsRange
	}
	return &GoogleSheets{SpreadsheetID: spreadsheetID, Range: rng, opts: opts}
}

func (g *GoogleSheets) Name() string { return "google-sheets" }

func (g *GoogleSheets) Fetch(ctx context.Context) (*Sheet, error) {
	if g.SpreadsheetID == "" {
		return nil, errors.New("google sheets: spreadsheet id not configured")
	}

	svc, err := sheets.NewService(ctx, g.opts...)
	if err != nil {
		return nil, fmt.Errorf("google sheets client: %w", err)
	}

	resp, err := svc.Spreadsheets.Values.Get(g.SpreadsheetID, g.Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google sheets get %s: %w", g.Range, err)
	}

	if len(resp.Values) == 0 {
		return &Sheet{}, nil
	}
	// The API trims trailing empty rows itself; rows in the middle are kept
	// so row counts line up with the sheet.
	return newSheet(resp.Values[0], resp.Values[1:], false), nil
}

// CredentialOptions builds read-only client options from whichever
// credentials are set, in order: a key file, inline service-account JSON,
// or a service-account email plus private key.
//
// The private key may carry literal "\n" sequences, as it does when pasted
// into an environment variable.
func CredentialOptions(file, jsonKey, email, privateKey string) ([]option.ClientOption, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}

	switch {
	case file != "":
		return append(opts, option.WithCredentialsFile(file)), nil
	case jsonKey != "":
		return append(opts, option.WithCredentialsJSON([]byte(jsonKey))), nil
	case email != "" && privateKey != "":
		key, err := json.Marshal(map[string]string{
			"type":         "service_account",
			"client_email": email,
			"private_key":  strings.ReplaceAll(privateKey, `\n`, "\n"),
			"token_uri":    googleTokenURI,
		})
		if err != nil {
			return nil, fmt.Errorf("encode service account: %w", err)
		}
		return append(opts, option.WithCredentialsJSON(key)), nil
	}

	return nil, errors.New("google sheets: no credentials configured")
}
