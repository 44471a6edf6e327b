// Package api defines the request and response types of the portalsync HTTP
// surface, shared with clients.
package api

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ImportRequest starts an import workflow. ThenSales schedules a sales
// download after a successful import.
type ImportRequest struct {
	FilePath  string `json:"filePath"`
	ThenSales bool   `json:"thenSales,omitempty"`
}

// RunAccepted acknowledges an asynchronously started workflow. Progress and
// the terminal result arrive on the /events stream.
type RunAccepted struct {
	Workflow string `json:"workflow"`
	State    string `json:"state"`
}

// Settings is the client view of the stored settings. The password is never
// returned; an empty password on update keeps the stored one.
type Settings struct {
	URL               string `json:"url"`
	Username          string `json:"username"`
	Password          string `json:"password,omitempty"`
	DownloadFolder    string `json:"downloadFolder"`
	DestinationFolder string `json:"destinationFolder"`
	SpreadsheetPath   string `json:"spreadsheetPath"`
	UpdaterPath       string `json:"updaterPath"`
}
