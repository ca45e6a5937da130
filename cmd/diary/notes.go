package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/diarynotes/diary-go/internal/dategroup"
	"github.com/diarynotes/diary-go/internal/diary"
	"github.com/diarynotes/diary-go/internal/model"
)

var (
	listAll  bool
	listJSON bool

	noteTitle       string
	noteDescription string
	noteImage       string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Work with the notes of your medical profile",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes grouped by day, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}

		notes := a.notes()
		defer notes.Close()

		if err := notes.Refresh(cmd.Context()); err != nil {
			return err
		}
		for listAll && notes.State().HasMore() {
			before := len(notes.State().Notes)
			if err := notes.LoadMore(cmd.Context()); err != nil {
				return err
			}
			if len(notes.State().Notes) == before {
				break
			}
		}

		st := notes.State()
		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(st.Notes)
		}

		printGroups(st)
		return nil
	},
}

func printGroups(st diary.State) {
	if len(st.Notes) == 0 {
		fmt.Println("No notes yet. Add one with: diary notes add --title ... --description ...")
		return
	}

	loc := time.Local
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, g := range st.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", g.Label)
		for _, n := range g.Notes {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", dategroup.FormatTime(n.CreatedAt, loc), n.ID, oneLine(n.Title))
		}
	}
	w.Flush()

	fmt.Printf("\nShowing %d of %d notes", dategroup.Count(st.Groups), st.TotalNotes)
	if st.HasMore() {
		fmt.Print(" (use --all to fetch the rest)")
	}
	fmt.Println()
}

var notesShowCmd = &cobra.Command{
	Use:   "show NOTE_ID",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}

		notes := a.notes()
		defer notes.Close()

		note, err := notes.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		now := time.Now()
		fmt.Println(note.Title)
		fmt.Printf("%s (%s)\n", dategroup.FormatDetail(note.CreatedAt, now), dategroup.Relative(note.CreatedAt, now))
		if note.ImageID != nil && *note.ImageID != "" {
			fmt.Printf("Image: %s\n", *note.ImageID)
		}
		fmt.Println()
		fmt.Println(note.Description)
		return nil
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}

		notes := a.notes()
		defer notes.Close()

		note, err := notes.Create(cmd.Context(), noteTitle, noteDescription, noteImage)
		if err != nil {
			return err
		}
		return confirmSaved(cmd, notes, "Created", note)
	},
}

var notesEditCmd = &cobra.Command{
	Use:   "edit NOTE_ID",
	Short: "Edit a note; fields left out keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}

		notes := a.notes()
		defer notes.Close()

		current, err := notes.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		title, description, image := current.Title, current.Description, ""
		if current.ImageID != nil {
			image = *current.ImageID
		}
		if cmd.Flags().Changed("title") {
			title = noteTitle
		}
		if cmd.Flags().Changed("description") {
			description = noteDescription
		}
		if cmd.Flags().Changed("image") {
			image = noteImage
		}

		note, err := notes.Update(cmd.Context(), args[0], title, description, image)
		if err != nil {
			return err
		}
		if note.ID == "" {
			note.ID = args[0]
		}
		return confirmSaved(cmd, notes, "Updated", note)
	},
}

// confirmSaved refreshes after a server-confirmed save so the reported count includes it.
func confirmSaved(cmd *cobra.Command, notes *diary.NotesSession, verb string, note model.Note) error {
	id := note.ID
	if id == "" {
		id = "(id not returned)"
	}
	fmt.Printf("%s note %s: %s\n", verb, id, oneLine(note.Title))

	if err := notes.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("saved, but refreshing the list failed: %w", err)
	}
	fmt.Printf("%d notes in your diary\n", notes.State().TotalNotes)
	return nil
}

var notesRmCmd = &cobra.Command{
	Use:     "rm NOTE_ID",
	Aliases: []string{"delete"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}

		notes := a.notes()
		defer notes.Close()

		if err := notes.Refresh(cmd.Context()); err != nil {
			return err
		}
		if err := notes.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted note %s, %d notes remain\n", args[0], notes.State().TotalNotes)
		return nil
	},
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > 60 {
		return string([]rune(s)[:57]) + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd, notesShowCmd, notesAddCmd, notesEditCmd, notesRmCmd)

	notesListCmd.Flags().BoolVar(&listAll, "all", false, "Fetch every page")
	notesListCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")

	notesAddCmd.Flags().StringVar(&noteTitle, "title", "", "Note title")
	notesAddCmd.Flags().StringVar(&noteDescription, "description", "", "Note text")
	notesAddCmd.Flags().StringVar(&noteImage, "image", "", "Image id to attach")
	notesAddCmd.MarkFlagRequired("title")
	notesAddCmd.MarkFlagRequired("description")

	notesEditCmd.Flags().StringVar(&noteTitle, "title", "", "New title")
	notesEditCmd.Flags().StringVar(&noteDescription, "description", "", "New text")
	notesEditCmd.Flags().StringVar(&noteImage, "image", "", "New image id, empty to remove")
}
