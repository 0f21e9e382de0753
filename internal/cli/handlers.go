package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/hqd/internal/catalog"
	"github.com/roach88/hqd/internal/engine"
)

// HandlerInfo is one catalog entry in list-handlers output.
type HandlerInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Class    string   `json:"class"`
	Category string   `json:"category"`
	AppTypes []string `json:"app_types"`
}

// NewListHandlersCommand creates the list-handlers command.
func NewListHandlersCommand(rootOpts *RootOptions) *cobra.Command {
	var appType string

	cmd := &cobra.Command{
		Use:           "list-handlers",
		Short:         "List the handlers in the built-in catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListHandlers(rootOpts, appType, cmd)
		},
	}

	cmd.Flags().StringVarP(&appType, "type", "t", "", "only handlers applicable to this application type")

	return cmd
}

func runListHandlers(rootOpts *RootOptions, appType string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
		TraceID:   NewTraceID(),
	}

	cat := catalog.Default()
	var handlers []catalog.Handler
	if appType != "" {
		t := catalog.AppType(appType)
		if !t.Valid() {
			err := &catalog.UnsupportedAppTypeError{Type: appType}
			_ = formatter.Error(engine.ErrorCode(err), err.Error(), nil)
			return WrapExitError(ExitParseError, "listing handlers", err)
		}
		handlers = cat.Applicable(t)
	} else {
		handlers = cat.All()
	}

	infos := make([]HandlerInfo, 0, len(handlers))
	for _, h := range handlers {
		types := make([]string, len(h.AppTypes))
		for i, t := range h.AppTypes {
			types[i] = string(t)
		}
		infos = append(infos, HandlerInfo{
			ID:       h.ID,
			Name:     h.Name,
			Class:    h.ClassPath,
			Category: string(h.Category),
			AppTypes: types,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tAPP TYPES\tCLASS")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.ID, info.Category, strings.Join(info.AppTypes, ","), info.Class)
	}
	return tw.Flush()
}
