package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/foomo/mddocs/service/vo"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the documents of the content directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			svc, _, err := newService(cfg, nil)
			if err != nil {
				return err
			}
			tree, err := svc.ListDocuments(cmd.Context())
			if err != nil {
				return err
			}
			return writeDocumentTable(cmd.OutOrStdout(), tree)
		},
	}
}

// writeDocumentTable prints every document of tree as a markdown table.
func writeDocumentTable(w io.Writer, tree *vo.Tree) error {
	docs := tree.Flatten()
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "No documents")
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Slug", "URL", "Title"})

	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, []string{doc.Slug, doc.URL, doc.Title})
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	return table.Render()
}
