package portal

// CSS selectors for the portal's AngularJS UI. These track the vendor's
// markup and are the part of the system most likely to break on a portal
// release; keep them in one place.
const (
	// Login page
	selUsername      = "#userNameInput"
	selPassword      = "#passwordInput"
	selSubmit        = "#submitButton"
	selLoginLandmark = "text=Reports"

	// Workspace navigation
	selCustomAttributes = "#url_customattributes"
	selExportImportTab  = "text=Export / Import"
	selActionsMenu      = "#import_export_actions"
	selMyWorkspace      = "a#url_myworkspace"
	selReportsNav       = "#url_reports>>span:text('Reports')"

	// Actions menu entries
	selExportCustom   = "a:has(span:text('Export custom attributes'))"
	selExportStandard = "a:has(span:text('Export standard attributes'))"
	selImportCustom   = "a:has(span:text('Import custom attributes'))"

	// Group-selection dialog
	selGroupTypeButton   = "button.form-control:has-text('Merch Category by Brand')"
	selCategoryHierarchy = "li.ng-binding:has-text('Category Hierarchy')"
	selCustomGroupsNode  = "span.dynatree-node:has(a.dynatree-title:text('Custom Groups'))"
	selFavoritesNode     = "span.dynatree-node:has(a.dynatree-title:text('Favorites'))"
	selPowerBIGroup      = "a.dynatree-title:text('Group Selection for Power BI')"
	selExportListButton  = "button.btn-primary:text('Export List')"
	selDismissCancelled  = `button.btn-default[ng-click="$dismiss('Cancelled')"]`

	// Message center
	selInboxCounter  = "#dh-header-inbox"
	selInboxButton   = "a:has(span#dh-header-inbox)"
	selMessagesFrame = "iframe#messages-frame"
	selMessageLink   = "div.message-link"
	selMessageDL     = "a:has(span.icon-download)"
	selMessageModalX = "a#message-modal_modalCloseX"

	// Import page
	selFileInput     = `input[name="file"]`
	selImportDataBtn = `button:has-text("Import Data")`
	selStatusRows    = "table tbody tr"
	selAcceptButton  = "span[uib-tooltip='Accept']"
	selRejectButton  = "span[uib-tooltip='Reject']"
	selConfirmYes    = `button[ng-click="yes()"]`
	selModalCloseX   = `button[aria-label="Close"]`
	selModalOk       = "button.btn-primary:has(span:has-text('Ok'))"

	// Report resubmission
	selReportRow     = `table tbody tr:has-text("Store Level Report")`
	selRowActionsBtn = ".btn.dropdown-toggle.undraggable"
	selContextMenu   = ".context-menu-text"
	selSubmitButton  = "#btnSubmit"

	// Sales job status table
	selStatusIcon     = `span[ng-show="!!objstatus"].icon`
	selReportFileLink = "a:has-text('Store Level Report')"

	// Report-folder tree, expanded label by label
	selTreeNodeFmt  = "span.dynatree-node:has(span.dynatree-expander):has(a.dynatree-title:has-text('%s'))"
	selTreeExpander = "span.dynatree-expander"
)

// reportTreeLabels is the folder chain from the tree root down to the store
// level reports.
var reportTreeLabels = []string{
	"Shared",
	"FNZ Nestle New Zealand Limited",
	"9. Store Level",
}

// reportLinkName is the accessible name of the report leaf link.
const reportLinkName = "F&B"
