package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/tree"
)

var (
	tileBase    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("15"))
	tileAbsent  = tileBase.Background(lipgloss.Color("240"))
	tilePresent = tileBase.Background(lipgloss.Color("178"))
	tileCorrect = tileBase.Background(lipgloss.Color("28"))
	tileGuess   = tileBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("252"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func runInteractive(cmd *cobra.Command, args []string) error {
	t, _, err := loadTree(cmd.Context())
	if err != nil {
		return err
	}
	return play(t, cmd.InOrStdin(), cmd.OutOrStdout())
}

// play walks t with feedback read line by line from in. A line is a g/w/y
// mask for the current guess, "-" to undo the last one, or "q" to stop.
func play(t *tree.Tree, in io.Reader, out io.Writer) error {
	sess := game.NewSession(t.Length)
	solved := game.SolvedCode(t.Length)
	sc := bufio.NewScanner(in)

	fmt.Fprintln(out, hintStyle.Render("feedback: g absent, w present, y correct; - back; q quit"))
	for {
		node, walkErr := t.Follow(sess.Chain)
		switch {
		case walkErr != nil:
			fmt.Fprintln(out, errorStyle.Render("no words left, some feedback was wrong; type - to go back"))
		case node.IsLeaf():
			fmt.Fprintf(out, "%d. %s %s\n", sess.Attempt(), renderGuess(t.Decode(node.Word)), hintStyle.Render("(only word left)"))
		default:
			fmt.Fprintf(out, "%d. %s\n", sess.Attempt(), renderGuess(t.Decode(node.Word)))
		}

		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		switch line {
		case "":
			continue
		case "q", "quit":
			return nil
		case "-":
			if err := back(t, sess); err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
			}
			continue
		}
		if walkErr != nil {
			continue
		}

		marks, err := game.ParseMask(line, node.Word)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
			continue
		}
		if err := sess.SetPending(marks); err != nil {
			return err
		}
		code, err := sess.Forward(node.Word)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "   "+renderTiles(t.Decode(node.Word), marks))
		if code == solved {
			fmt.Fprintf(out, "solved in %d\n", len(sess.Chain))
			return nil
		}
	}
}

// back undoes the last feedback of sess.
func back(t *tree.Tree, sess *game.Session) error {
	if len(sess.Chain) == 0 {
		return errors.New("nothing to undo")
	}
	prev, err := t.Follow(sess.Chain[:len(sess.Chain)-1])
	if err != nil {
		return err
	}
	return sess.Back(prev.Word)
}

func renderGuess(word string) string {
	var b strings.Builder
	for _, r := range word {
		b.WriteString(tileGuess.Render(strings.ToUpper(string(r))))
	}
	return b.String()
}

// renderTiles colors each letter of word by its mark.
func renderTiles(word string, marks game.Evaluation) string {
	var b strings.Builder
	for i, r := range []rune(word) {
		style := tileAbsent
		switch marks[i] {
		case game.MarkPresent:
			style = tilePresent
		case game.MarkCorrect:
			style = tileCorrect
		}
		b.WriteString(style.Render(strings.ToUpper(string(r))))
	}
	return b.String()
}
