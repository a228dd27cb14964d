// ABOUTME: Kanban board CLI commands
// ABOUTME: Boards, their columns, and the lead and property cards in each column
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/zala/handlers"
	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/viz"
)

func newBoardCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board",
		Aliases: []string{"boards"},
		Short:   "Manage kanban boards",
	}
	column := &cobra.Command{Use: "column", Short: "Manage board columns"}
	column.AddCommand(newColumnAddCmd(g), newColumnRenameCmd(g), newColumnDeleteCmd(g))
	lead := &cobra.Command{Use: "lead", Short: "Manage lead cards"}
	lead.AddCommand(newBoardLeadAddCmd(g), newMoveCardCmd(g, "lead"))
	property := &cobra.Command{Use: "property", Short: "Manage property cards"}
	property.AddCommand(newBoardPropertyAddCmd(g), newMoveCardCmd(g, "property"))

	cmd.AddCommand(
		newBoardListCmd(g),
		newBoardShowCmd(g),
		newBoardCreateCmd(g),
		newBoardRenameCmd(g),
		newBoardDeleteCmd(g),
		column,
		lead,
		property,
	)
	return cmd
}

func printBoard(w io.Writer, b handlers.BoardOutput) {
	fmt.Fprintf(w, "%s (ID: %d)\n", color.New(color.Bold).Sprint(b.Name), b.BoardID)
	for _, s := range b.Steps {
		fmt.Fprintf(w, "\n  [%d] %s (step %d)\n", s.Column, color.CyanString(s.Name), s.StepID)
		if len(s.Cards) == 0 {
			fmt.Fprintln(w, "      (empty)")
		}
		for _, c := range s.Cards {
			line := fmt.Sprintf("      %s %d  %s", c.Kind, c.ID, c.Title)
			if c.Address != "" {
				line += "  · " + c.Address
			}
			fmt.Fprintln(w, line)
		}
	}
}

func newBoardListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewBoardHandlers(rt.deps).ListBoards(cmd.Context(), nil, handlers.ListBoardsInput{})
				if err != nil {
					return err
				}
				if len(out.Boards) == 0 {
					fmt.Fprintln(rt.out, "No boards found")
					return nil
				}
				tw := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tNAME\tCARDS\tCOLUMNS")
				_, _ = fmt.Fprintln(tw, "--\t----\t-----\t-------")
				for _, b := range out.Boards {
					cards := 0
					names := make([]string, 0, len(b.Steps))
					for _, s := range b.Steps {
						cards += len(s.Cards)
						names = append(names, s.Name)
					}
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", b.BoardID, b.Name, cards, strings.Join(names, " → "))
				}
				return tw.Flush()
			})
		},
	}
}

func newBoardShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <board-id>",
		Short: "Show a board's columns and cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("board", args[0])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				k := pages.NewKanbanController(rt.deps)
				if err := k.Load(cmd.Context(), id); err != nil {
					return err
				}
				b, ok := k.Active()
				if !ok || b.BoardID != id {
					return fmt.Errorf("board %d not found", id)
				}
				printBoard(rt.out, handlers.BoardToOutput(b))
				fmt.Fprintln(rt.out)
				fmt.Fprint(rt.out, viz.RenderBoard(viz.GenerateBoardStats(b)))
				return nil
			})
		},
	}
}

func newBoardCreateCmd(g *globalFlags) *cobra.Command {
	var steps []string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a board",
		Long:  "Creates a board with the given columns, or To Do, In Progress, Review, Done and Backlog.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewBoardHandlers(rt.deps).CreateBoard(cmd.Context(), nil, handlers.CreateBoardInput{
					Name:  strings.Join(args, " "),
					Steps: steps,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(rt.out, "✓ Board created")
				printBoard(rt.out, out)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&steps, "column", nil, "Column name (repeatable, up to 5)")
	return cmd
}

func newBoardRenameCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <board-id> <name>",
		Short: "Rename a board",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("board", args[0])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				k := pages.NewKanbanController(rt.deps)
				if err := k.RenameBoard(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Board %d renamed\n", id)
				return nil
			})
		},
	}
}

func newBoardDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("board", args[0])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				if err := pages.NewKanbanController(rt.deps).DeleteBoard(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Board %d deleted\n", id)
				return nil
			})
		},
	}
}

func newColumnAddCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <board-id> <name>",
		Short: "Add a column after the board's last one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("board", args[0])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewBoardHandlers(rt.deps).AddBoardStep(cmd.Context(), nil, handlers.AddBoardStepInput{
					BoardID: id,
					Name:    strings.Join(args[1:], " "),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(rt.out, "✓ Column added")
				printBoard(rt.out, out)
				return nil
			})
		},
	}
}

func newColumnRenameCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <board-id> <step-id> <name>",
		Short: "Rename a column",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, err := parseID("board", args[0])
			if err != nil {
				return err
			}
			stepID, err := parseID("step", args[1])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				err := pages.NewKanbanController(rt.deps).RenameStep(cmd.Context(), boardID, stepID, strings.Join(args[2:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Column %d renamed\n", stepID)
				return nil
			})
		},
	}
}

func newColumnDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id> <step-id>",
		Short: "Delete a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, err := parseID("board", args[0])
			if err != nil {
				return err
			}
			stepID, err := parseID("step", args[1])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				if err := pages.NewKanbanController(rt.deps).DeleteStep(cmd.Context(), boardID, stepID); err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Column %d deleted\n", stepID)
				return nil
			})
		},
	}
}

func newBoardLeadAddCmd(g *globalFlags) *cobra.Command {
	var in handlers.AddBoardLeadInput
	cmd := &cobra.Command{
		Use:   "add <step-id> <business>",
		Short: "Add a lead card to a column",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stepID, err := parseID("step", args[0])
			if err != nil {
				return err
			}
			in.StepID = stepID
			in.Business = strings.Join(args[1:], " ")
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewBoardHandlers(rt.deps).AddBoardLead(cmd.Context(), nil, in)
				if err != nil {
					return err
				}
				fmt.Fprintln(rt.out, "✓ Lead added")
				printBoard(rt.out, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.PersonType, "person-type", "", "Kind of person, e.g. agent or broker")
	cmd.Flags().StringVar(&in.Website, "website", "", "Website")
	cmd.Flags().StringVar(&in.LicenseNum, "license", "", "License number")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	return cmd
}

func newBoardPropertyAddCmd(g *globalFlags) *cobra.Command {
	var in handlers.AddBoardPropertyInput
	cmd := &cobra.Command{
		Use:   "add <step-id> <name>",
		Short: "Add a property card to a column",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stepID, err := parseID("step", args[0])
			if err != nil {
				return err
			}
			in.StepID = stepID
			in.Name = strings.Join(args[1:], " ")
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewBoardHandlers(rt.deps).AddBoardProperty(cmd.Context(), nil, in)
				if err != nil {
					return err
				}
				fmt.Fprintln(rt.out, "✓ Property added")
				printBoard(rt.out, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.MLSNumber, "mls", "", "MLS listing number")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&in.Street1, "street", "", "Street address (required)")
	cmd.Flags().StringVar(&in.Street2, "unit", "", "Unit or suite")
	cmd.Flags().StringVar(&in.City, "city", "", "City (required)")
	cmd.Flags().StringVar(&in.State, "state", "", "State (required)")
	cmd.Flags().StringVar(&in.Zipcode, "zip", "", "ZIP code (required)")
	return cmd
}

func newMoveCardCmd(g *globalFlags, kind string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("move <%s-id> <from-step-id> <to-step-id>", kind),
		Short: fmt.Sprintf("Move a %s card to another column", kind),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in handlers.MoveCardInput
			var err error
			if in.CardID, err = parseID(kind, args[0]); err != nil {
				return err
			}
			if in.FromStepID, err = parseID("step", args[1]); err != nil {
				return err
			}
			if in.ToStepID, err = parseID("step", args[2]); err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				h := handlers.NewBoardHandlers(rt.deps)
				move := h.MoveBoardLead
				if kind == "property" {
					move = h.MoveBoardProperty
				}
				_, out, err := move(cmd.Context(), nil, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ %s %d moved\n", kind, in.CardID)
				printBoard(rt.out, out)
				return nil
			})
		},
	}
}
