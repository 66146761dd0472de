package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jsfong/model-parser/client"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			return output(cmd.OutOrStdout(), resp, nil, func(w io.Writer) {
				fmt.Fprintln(w, resp.Status)
			})
		},
	}
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <model-id>",
		Short: "List the saved versions of a model, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := apiClient.Models.Versions(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("versions: %w", err)
			}
			lines := func(w io.Writer) {
				for _, v := range versions {
					fmt.Fprintln(w, v)
				}
			}
			return output(cmd.OutOrStdout(), versions, func(w io.Writer) {
				rows := make([][]string, len(versions))
				for i, v := range versions {
					rows[i] = []string{strconv.Itoa(v)}
				}
				formatTable(w, []string{"VERSION"}, rows)
			}, lines)
		},
	}
}

func newStatsCmd() *cobra.Command {
	var version int
	cmd := &cobra.Command{
		Use:   "stats <model-id>",
		Short: "Show element and relationship counts of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := apiClient.Models.Stats(cmd.Context(), args[0], version)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			return output(cmd.OutOrStdout(), st, func(w io.Writer) { statsTable(w, st) }, nil)
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "Model version (default latest)")
	return cmd
}

func statsTable(w io.Writer, st *client.ModelStats) {
	connected := "-"
	if st.ConnectedRelationships != nil {
		connected = strconv.Itoa(*st.ConnectedRelationships)
	}
	rows := [][]string{
		{"version", strconv.Itoa(st.Version)},
		{"elements", strconv.Itoa(st.ElementsCount)},
		{"relationships", strconv.Itoa(st.RelationshipsCount)},
		{"connected relationships", connected},
	}
	for _, group := range []struct {
		prefix string
		counts map[string]int
	}{
		{"elements of type ", st.CountsByType},
		{"elements of nature ", st.CountsByNature},
		{"relationships of type ", st.RelationshipsByType},
		{"relationships of nature ", st.RelationshipsByNature},
	} {
		for _, k := range sortedKeys(group.counts) {
			rows = append(rows, []string{group.prefix + k, strconv.Itoa(group.counts[k])})
		}
	}
	formatTable(w, []string{"STAT", "VALUE"}, rows)
}

func newElementsCmd() *cobra.Command {
	var opts client.ElementOptions
	var limit int
	cmd := &cobra.Command{
		Use:   "elements <model-id>",
		Short: "Filter and project the elements of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("limit") {
				opts.Limit = client.Int(limit)
			}
			res, err := apiClient.Models.Elements(cmd.Context(), args[0], opts)
			if err != nil {
				return fmt.Errorf("elements: %w", err)
			}
			return output(cmd.OutOrStdout(), res, func(w io.Writer) { elementsTable(w, res) }, func(w io.Writer) {
				for _, row := range elementRows(res) {
					fmt.Fprintln(w, row[0])
				}
			})
		},
	}
	cmd.Flags().IntVar(&opts.Version, "version", 0, "Model version (default latest)")
	cmd.Flags().StringVar(&opts.ElementID, "element-id", "", "Only the element with this id")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Element type filter (default All)")
	cmd.Flags().StringVar(&opts.Nature, "nature", "", "Element nature filter (default All)")
	cmd.Flags().StringVar(&opts.Facet, "facet", "", "Projection: none|dynamic|core|combined")
	cmd.Flags().StringVar(&opts.Path, "path", "", "JSONPath applied to each projected element")
	cmd.Flags().BoolVar(&opts.IncludeDetail, "detail", false, "Wrap projections with element id, type and name")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "Truncate nested values below this depth (0 = unlimited)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max elements returned")
	return cmd
}

// elementRows extracts id, type, nature and name from each result item.
// Projections that do not carry those fields yield empty cells.
func elementRows(res *client.QueryResult) [][]string {
	rows := make([][]string, 0, len(res.Data))
	for _, raw := range res.Data {
		var item struct {
			ID     string `json:"id"`
			Type   string `json:"type"`
			Nature string `json:"nature"`
			Name   string `json:"name"`
		}
		_ = json.Unmarshal(raw, &item) // non-object projections leave item empty
		rows = append(rows, []string{item.ID, item.Type, item.Nature, item.Name})
	}
	return rows
}

func elementsTable(w io.Writer, res *client.QueryResult) {
	formatTable(w, []string{"ID", "TYPE", "NATURE", "NAME"}, elementRows(res))
	fmt.Fprintf(w, "\n%d of %d matching elements\n", res.ResultCount, res.TotalResultCount)
}

func newRelationshipsCmd() *cobra.Command {
	var version, parentDepth, childDepth int
	cmd := &cobra.Command{
		Use:   "relationships <model-id> <element-id>",
		Short: "Show the ancestors and descendants of an element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := client.RelationshipOptions{Version: version}
			if cmd.Flags().Changed("parent-depth") {
				opts.ParentDepth = client.Int(parentDepth)
			}
			if cmd.Flags().Changed("child-depth") {
				opts.ChildDepth = client.Int(childDepth)
			}
			out, err := apiClient.Models.Relationships(cmd.Context(), args[0], args[1], opts)
			if err != nil {
				return fmt.Errorf("relationships: %w", err)
			}
			return output(cmd.OutOrStdout(), out, func(w io.Writer) { printLines(w, out) }, func(w io.Writer) {
				for _, id := range sortedKeys(out.ElementsData) {
					fmt.Fprintln(w, id)
				}
			})
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "Model version (default latest)")
	cmd.Flags().IntVar(&parentDepth, "parent-depth", 1, "Levels of ancestors (0 = none)")
	cmd.Flags().IntVar(&childDepth, "child-depth", 1, "Levels of descendants (0 = none)")
	return cmd
}

func printLines(w io.Writer, out *client.OutputGraph) {
	fmt.Fprintln(w, "Parents:")
	for _, l := range out.ParentLines {
		fmt.Fprintln(w, l.String())
	}
	fmt.Fprintln(w, "Children:")
	for _, l := range out.ChildLines {
		fmt.Fprintln(w, l.String())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
