package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ollamaedit/engine"
	"ollamaedit/logger"
	"ollamaedit/provider"
	"ollamaedit/text"
	"ollamaedit/types"
)

var editFlags struct {
	file        string
	firstLine   int
	lastLine    int
	instruction string
	write       bool

	providerName string
	url          string
	model        string
	simulate     string
	logLevel     string
}

// editCmd runs one edit headlessly: no editor, no review, the proposal is
// applied directly and the result printed or written back. Useful for
// scripting and for trying out provider settings.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Run a single edit against a file and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd.Context())
	},
}

func init() {
	flags := editCmd.Flags()
	flags.StringVarP(&editFlags.file, "file", "f", "", "file to edit (required)")
	flags.IntVar(&editFlags.firstLine, "first", 1, "first line of the edit range, 1-indexed")
	flags.IntVar(&editFlags.lastLine, "last", 0, "last line of the edit range, inclusive (default: last line of file)")
	flags.StringVarP(&editFlags.instruction, "instruction", "m", "", "what to do with the range (required)")
	flags.BoolVarP(&editFlags.write, "write", "w", false, "write the result back instead of printing it")
	flags.StringVar(&editFlags.providerName, "provider", "", "provider backend (ollama, openai)")
	flags.StringVar(&editFlags.url, "url", "", "provider base URL")
	flags.StringVar(&editFlags.model, "model", "", "model name")
	flags.StringVar(&editFlags.simulate, "simulate", "", "canned response instead of calling a provider")
	flags.StringVar(&editFlags.logLevel, "log-level", "warn", "debug, info, warn or error")
	editCmd.MarkFlagRequired("file")
	editCmd.MarkFlagRequired("instruction")
}

func runEdit(ctx context.Context) error {
	logger.SetLevel(logger.ParseLevel(editFlags.logLevel))

	data, err := os.ReadFile(editFlags.file)
	if err != nil {
		return err
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")

	last := editFlags.lastLine
	if last == 0 {
		last = len(lines)
	}

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if editFlags.providerName != "" {
		config.Provider = editFlags.providerName
	}
	if editFlags.url != "" {
		config.URL = editFlags.url
	}
	if editFlags.model != "" {
		config.Model = editFlags.model
	}
	if editFlags.simulate != "" {
		config.SimulatedResponse = editFlags.simulate
	}

	p, err := provider.New(config.providerConfig())
	if err != nil {
		return err
	}
	eng := engine.New(p, config.providerConfig())

	req := &types.EditRequest{
		Instruction:  editFlags.instruction,
		FirstLine:    editFlags.firstLine,
		LastLine:     last,
		FileType:     fileTypeOf(editFlags.file),
		ContextLines: config.ContextLines,
	}
	if err := eng.StartEdit(ctx, req, lines); err != nil {
		return err
	}

	for {
		status, err := eng.Poll()
		if status == engine.TaskError {
			return err
		}
		if status == engine.TaskDone {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	buf := text.NewLineBuffer(lines)
	if _, err := eng.Materialize(buf, nil); err != nil {
		return err
	}

	result := strings.Join(buf.Lines(), "\n") + "\n"
	if editFlags.write {
		return os.WriteFile(editFlags.file, []byte(result), 0644)
	}
	fmt.Print(result)
	return nil
}

// fileTypeOf guesses an editor filetype from the file extension to tag the
// prompt's code block
func fileTypeOf(path string) string {
	dot := strings.LastIndex(path, ".")
	if dot < 0 || dot == len(path)-1 {
		return ""
	}
	ext := path[dot+1:]
	switch ext {
	case "py":
		return "python"
	case "js":
		return "javascript"
	case "ts":
		return "typescript"
	case "rs":
		return "rust"
	case "md":
		return "markdown"
	default:
		return ext
	}
}
