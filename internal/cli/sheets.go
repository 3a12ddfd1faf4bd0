package cli

import (
	"brokemate/internal/config"
	gsheet "brokemate/internal/sheets/google"
)

// SheetsOptions maps cfg onto the Sheets client options. The OAuth client is
// only read when a token file is configured.
func SheetsOptions(cfg *config.Config) (gsheet.Options, error) {
	opts := gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}
	if cfg.UsesOAuth() {
		client, err := cfg.OAuthClient()
		if err != nil {
			return gsheet.Options{}, err
		}
		opts.OAuthClientJSON = string(client)
		opts.OAuthTokenFile = cfg.GoogleOAuthTokenFile
	}
	return opts, nil
}
