package portal

import (
	"context"
)

// RunExport drives the two attribute exports (custom, then standard), each
// ending in the group-selection dialog, and then collects the resulting
// files from the message center. Returns the saved file paths.
//
// A failed step aborts the whole export; the portal may already have queued
// an export job by then, which is not rolled back.
func (f *Flow) RunExport(ctx context.Context, downloadDir string) ([]string, error) {
	f.status("Exporting custom attributes...")
	if err := f.click(KindExport, "export.workspace", selCustomAttributes); err != nil {
		return nil, err
	}
	if err := f.click(KindExport, "export.tab", selExportImportTab); err != nil {
		return nil, err
	}
	if err := f.click(KindExport, "export.actions-menu", selActionsMenu); err != nil {
		return nil, err
	}
	if err := f.click(KindExport, "export.custom", selExportCustom); err != nil {
		return nil, err
	}
	if err := f.groupSelection(ctx); err != nil {
		return nil, err
	}

	f.status("Exporting standard attributes...")
	if err := f.click(KindExport, "export.actions-menu", selActionsMenu); err != nil {
		return nil, err
	}
	if err := f.click(KindExport, "export.standard", selExportStandard); err != nil {
		return nil, err
	}
	if err := f.groupSelection(ctx); err != nil {
		return nil, err
	}

	return f.DownloadNewExports(ctx, downloadDir)
}

// groupSelection walks the fixed hierarchy chain in the group-selection
// dialog, triggers Export List and dismisses the dialog.
func (f *Flow) groupSelection(ctx context.Context) error {
	steps := []struct {
		op  string
		sel string
	}{
		{"group-selection.type", selGroupTypeButton},
		{"group-selection.hierarchy", selCategoryHierarchy},
		{"group-selection.custom-groups", selCustomGroupsNode},
		{"group-selection.favorites", selFavoritesNode},
		{"group-selection.powerbi", selPowerBIGroup},
		{"group-selection.export-list", selExportListButton},
	}
	for _, s := range steps {
		if err := f.click(KindGroupSelection, s.op, s.sel); err != nil {
			return err
		}
	}

	// The export is queued server-side; the dialog needs a moment before the
	// dismiss button responds.
	if err := sleep(ctx, f.T.ExportSettle); err != nil {
		return err
	}
	return f.click(KindGroupSelection, "group-selection.dismiss", selDismissCancelled)
}
