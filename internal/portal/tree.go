package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// expandReportTree opens the Reports view and walks the folder tree down to
// the store-level report link. Nodes already expanded are left alone; the
// leaf link gets one re-expand retry because the tree occasionally collapses
// its last level on load.
func (f *Flow) expandReportTree(ctx context.Context) error {
	f.status("Expanding report folders...")

	if err := f.click(KindFolderExpansion, "tree.reports-nav", selReportsNav); err != nil {
		return err
	}
	if err := f.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return wrap(KindFolderExpansion, "tree.load", err)
	}

	for _, label := range reportTreeLabels {
		if err := f.expandNode(ctx, label); err != nil {
			return err
		}
	}

	// The leaf is a plain link, not a folder node.
	link := f.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{
		Name:  reportLinkName,
		Exact: playwright.Bool(true),
	})
	visible, err := link.IsVisible()
	if err == nil && !visible {
		last := reportTreeLabels[len(reportTreeLabels)-1]
		if err := f.expandNode(ctx, last); err != nil {
			return err
		}
		visible, err = link.IsVisible()
	}
	if err != nil {
		return wrap(KindFolderExpansion, "tree.leaf", err)
	}
	if !visible {
		return wrap(KindFolderExpansion, "tree.leaf",
			fmt.Errorf("%q link not visible after expanding %v", reportLinkName, reportTreeLabels))
	}
	if err := link.Click(playwright.LocatorClickOptions{Timeout: ms(f.T.SelectorTimeout)}); err != nil {
		return wrap(KindFolderExpansion, "tree.leaf-click", err)
	}
	return nil
}

// expandNode clicks the expander of the tree node labelled label unless the
// node already reports itself expanded.
func (f *Flow) expandNode(ctx context.Context, label string) error {
	node := f.Page.Locator(fmt.Sprintf(selTreeNodeFmt, label)).First()

	class, err := node.GetAttribute("class")
	if err != nil {
		return wrap(KindFolderExpansion, "tree.expand "+label, err)
	}
	if strings.Contains(class, "dynatree-expanded") {
		return nil
	}

	f.Log.Debug("expanding tree node", "label", label)
	if err := node.Locator(selTreeExpander).Click(playwright.LocatorClickOptions{
		Timeout: ms(f.T.SelectorTimeout),
	}); err != nil {
		return wrap(KindFolderExpansion, "tree.expand "+label, err)
	}
	return sleep(ctx, f.T.ClickSettle)
}
