package portal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ImportResult is the terminal outcome of an import attempt. Status-phase
// failures are folded into the result instead of propagating; only upload
// and navigation failures surface as errors.
type ImportResult struct {
	Success  bool   `json:"success"`
	HasError bool   `json:"hasError"`
	Message  string `json:"message"`
}

// importAction is the decision taken after reading the status row.
type importAction int

const (
	actionAccept importAction = iota
	actionReject
	actionTerminalRejected
	actionRecheck
)

// decideImport maps the first status row's cells to the next action:
// PENDING with zero errors is accepted, PENDING with errors is rejected,
// REJECTED is terminal, anything else means the portal is still processing.
func decideImport(status, errorCount string) importAction {
	s := strings.ToUpper(strings.TrimSpace(status))
	e := strings.TrimSpace(errorCount)
	switch {
	case s == "PENDING" && e == "0":
		return actionAccept
	case s == "PENDING":
		return actionReject
	case s == "REJECTED":
		return actionTerminalRejected
	default:
		return actionRecheck
	}
}

// RunImport uploads filePath to the portal, works the accept/reject status
// row to a terminal state and, on acceptance, resubmits the store-level
// report.
func (f *Flow) RunImport(ctx context.Context, filePath string) (ImportResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return ImportResult{}, wrap(KindFileSystem, "import.read", err)
	}

	f.status("Uploading " + filepath.Base(filePath) + "...")
	if err := f.click(KindImport, "import.workspace", selCustomAttributes); err != nil {
		return ImportResult{}, err
	}
	if err := f.click(KindImport, "import.tab", selExportImportTab); err != nil {
		return ImportResult{}, err
	}
	if err := f.click(KindImport, "import.actions-menu", selActionsMenu); err != nil {
		return ImportResult{}, err
	}
	if err := f.click(KindImport, "import.custom", selImportCustom); err != nil {
		return ImportResult{}, err
	}
	if err := f.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return ImportResult{}, wrap(KindImport, "import.page-load", err)
	}

	err = f.Page.Locator(selFileInput).SetInputFiles([]playwright.InputFile{{
		Name:   filepath.Base(filePath),
		Buffer: data,
	}})
	if err != nil {
		return ImportResult{}, wrap(KindImport, "import.upload", err)
	}
	if err := f.click(KindImport, "import.submit", selImportDataBtn); err != nil {
		return ImportResult{}, err
	}
	if err := f.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(f.T.ImportTableTimeout),
	}); err != nil {
		return ImportResult{}, wrap(KindImport, "import.processing", err)
	}

	f.status("Import data sent, checking status...")
	res := f.checkImportStatus(ctx)
	if !res.Success {
		return res, nil
	}

	f.status("Import accepted. Resubmitting report...")
	// The accepted attributes only show up in the report tree after a
	// refresh.
	if err := f.reloadAndSettle(ctx, KindImport, "import.post-accept-reload", f.T.ImportSettle); err != nil {
		return ImportResult{Success: false, HasError: true, Message: err.Error()}, nil
	}
	if err := f.expandReportTree(ctx); err != nil {
		return ImportResult{Success: false, HasError: true, Message: err.Error()}, nil
	}
	if err := f.resubmitReport(ctx); err != nil {
		return ImportResult{Success: false, HasError: true, Message: err.Error()}, nil
	}
	f.status("Report resubmitted after import.")
	return ImportResult{Success: true, Message: "Import and resubmit completed successfully."}, nil
}

// checkImportStatus reads the first status row and drives it to a terminal
// state, reloading between checks. The loop is bounded so a row that never
// finalizes becomes a failed result instead of polling forever.
func (f *Flow) checkImportStatus(ctx context.Context) ImportResult {
	for attempt := 1; attempt <= f.T.ImportStatusMaxChecks; attempt++ {
		if err := f.waitVisible(KindImport, "import.status-table", selStatusRows, f.T.ImportTableTimeout); err != nil {
			return resultFromError(err)
		}

		row := f.Page.Locator(selStatusRows).Nth(0)
		status, err := row.Locator("td").Nth(2).TextContent()
		if err != nil {
			return resultFromError(wrap(KindImport, "import.status-cell", err))
		}
		errorCount, err := row.Locator("td").Nth(5).TextContent()
		if err != nil {
			return resultFromError(wrap(KindImport, "import.error-cell", err))
		}
		errorCount = strings.TrimSpace(errorCount)
		f.status(fmt.Sprintf("Import status: %s, Errors: %s", strings.TrimSpace(status), errorCount))

		switch decideImport(status, errorCount) {
		case actionAccept:
			if err := f.confirmDecision(ctx, selAcceptButton); err != nil {
				return resultFromError(err)
			}
			return ImportResult{Success: true, Message: "Import accepted successfully"}

		case actionReject:
			if err := f.confirmDecision(ctx, selRejectButton); err != nil {
				return resultFromError(err)
			}
			return ImportResult{
				HasError: true,
				Message:  fmt.Sprintf("Import rejected due to %s errors.", errorCount),
			}

		case actionTerminalRejected:
			return ImportResult{HasError: true, Message: "Import rejected by the system."}

		default:
			f.status("Import status not final, refreshing page...")
			if err := sleep(ctx, f.T.StatusRecheckDelay); err != nil {
				return resultFromError(err)
			}
			if _, err := f.Page.Reload(); err != nil {
				return resultFromError(wrap(KindImport, "import.status-reload", err))
			}
		}
	}
	return ImportResult{
		HasError: true,
		Message:  fmt.Sprintf("Import status did not finalize after %d checks.", f.T.ImportStatusMaxChecks),
	}
}

// confirmDecision clicks the accept or reject control, confirms the dialog
// and closes the resulting modal (the close button, falling back to Ok).
func (f *Flow) confirmDecision(ctx context.Context, decisionSel string) error {
	if err := f.waitVisible(KindImport, "import.decision", decisionSel, f.T.ModalTimeout); err != nil {
		return err
	}
	if err := f.click(KindImport, "import.decision", decisionSel); err != nil {
		return err
	}
	if err := sleep(ctx, f.T.ConfirmSettle); err != nil {
		return err
	}

	if err := f.waitVisible(KindImport, "import.confirm", selConfirmYes, f.T.ModalTimeout); err != nil {
		return err
	}
	if err := f.click(KindImport, "import.confirm", selConfirmYes); err != nil {
		return err
	}
	if err := sleep(ctx, f.T.ConfirmSettle); err != nil {
		return err
	}

	closeX := f.Page.Locator(selModalCloseX)
	if visible, err := closeX.IsVisible(); err == nil && visible {
		if err := closeX.Click(); err != nil {
			return wrap(KindImport, "import.close-modal", err)
		}
		return nil
	}
	if err := f.waitVisible(KindImport, "import.close-modal", selModalOk, f.T.ModalTimeout); err != nil {
		return err
	}
	return f.click(KindImport, "import.close-modal", selModalOk)
}

// resubmitReport reruns the store-level report through its row-scoped
// context menu.
func (f *Flow) resubmitReport(ctx context.Context) error {
	row := f.Page.Locator(selReportRow).First()
	if err := row.Locator(selRowActionsBtn).Click(playwright.LocatorClickOptions{
		Timeout: ms(f.T.SelectorTimeout),
	}); err != nil {
		return wrap(KindImport, "import.resubmit-menu", err)
	}
	if err := sleep(ctx, f.T.ClickSettle); err != nil {
		return err
	}
	if err := f.click(KindImport, "import.resubmit-action", selContextMenu); err != nil {
		return err
	}
	if err := sleep(ctx, f.T.ConfirmSettle); err != nil {
		return err
	}
	if err := f.click(KindImport, "import.resubmit-confirm", selSubmitButton); err != nil {
		return err
	}
	if err := sleep(ctx, f.T.ConfirmSettle); err != nil {
		return err
	}
	return f.reloadAndSettle(ctx, KindImport, "import.post-resubmit-reload", f.T.ClickSettle)
}

// resultFromError folds a status-phase failure into a non-throwing result,
// matching the workflow's contract that only upload/navigation failures
// propagate as errors.
func resultFromError(err error) ImportResult {
	msg := err.Error()
	if errors.Is(err, playwright.ErrTimeout) {
		msg = "Timeout error during import: " + msg
	}
	return ImportResult{HasError: true, Message: msg}
}
