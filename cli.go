package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"jarvis-chat/internal/backend"
	"jarvis-chat/internal/commands"
	"jarvis-chat/internal/orchestrator"
	"jarvis-chat/internal/terminal"
)

var (
	errChatFailed   = errors.New("chat request failed, see the log for details")
	errUploadFailed = errors.New("upload failed, see the log for details")
)

func newAskCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			return withApp(cmd, flags, func(ctx context.Context, cmd *cobra.Command, a *app) error {
				return runAsk(ctx, a, message, cmd.OutOrStdout())
			})
		},
	}
}

func runAsk(ctx context.Context, a *app, message string, out io.Writer) error {
	orch := orchestrator.New(a.store, a.client, orchestrator.WithLogger(a.logger))
	if !orch.SendMessage(ctx, message) {
		return fmt.Errorf("message is empty")
	}

	last, _ := a.store.Snapshot().Last()
	if last.Content == orchestrator.ChatFailedReply {
		return errChatFailed
	}
	fmt.Fprintln(out, last.Content)
	return nil
}

func newUploadCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file and print Jarvis' acknowledgment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, cmd *cobra.Command, a *app) error {
				return runUpload(ctx, a, args[0], cmd.OutOrStdout())
			})
		},
	}
}

func runUpload(ctx context.Context, a *app, path string, out io.Writer) error {
	orch := orchestrator.New(a.store, a.client, orchestrator.WithLogger(a.logger))
	orch.UploadPath(ctx, path)

	msgs := a.store.Messages()
	last := msgs[len(msgs)-1]
	if last.Content == orchestrator.UploadFailedReply {
		return errUploadFailed
	}

	display := terminal.NewDisplay(out)
	// Skip the greeting
	for _, msg := range msgs[1:] {
		display.PrintMessage(msg)
	}
	if last.Content == orchestrator.ChatFailedReply {
		return errChatFailed
	}
	return nil
}

func newFilesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List files stored on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, cmd *cobra.Command, a *app) error {
				files, err := a.client.ListFiles(ctx)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			})
		},
	}
}

func newDownloadCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "download <name> [dest]",
		Short: "Download a stored file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, cmd *cobra.Command, a *app) error {
				dest := a.cfg.DownloadDir
				if len(args) > 1 {
					dest = args[1]
				}
				path, n, err := backend.SaveFile(ctx, a.client, args[0], dest)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", path, humanize.Bytes(uint64(n)))
				return nil
			})
		},
	}
}

// runPlain is the line-oriented client used when no terminal is attached
func runPlain(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	display := terminal.NewDisplay(out)
	defer display.Cleanup()

	orch := orchestrator.New(a.store, a.client, orchestrator.WithLogger(a.logger))
	exec := commands.NewExecutor(orch, a.client, a.client.BaseURL(), a.cfg.DownloadDir)

	display.PrintWelcome(a.client.BaseURL())
	if err := a.client.HealthCheck(ctx); err != nil {
		display.PrintWarning(err.Error())
	} else {
		display.PrintSuccess("Connected to " + a.client.BaseURL())
	}

	unsubscribe := a.store.Subscribe(display.Render)
	defer unsubscribe()
	display.Render(a.store.Snapshot())

	lines := readLines(ctx, terminal.NewReader(in))
	for {
		display.PrintPrompt()

		var line string
		select {
		case <-ctx.Done():
			display.PrintGoodbye()
			return nil
		case l, ok := <-lines:
			if !ok {
				display.PrintGoodbye()
				return nil
			}
			line = l
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if !commands.IsCommand(line) {
			orch.SendMessage(ctx, commands.ChatText(line))
			continue
		}

		cmd, err := commands.Parse(line)
		if err != nil {
			display.PrintError(err)
			continue
		}
		res := exec.Run(ctx, cmd)
		if res.Quit {
			display.PrintGoodbye()
			return nil
		}
		showResult(display, res)
	}
}

// readLines feeds input lines to a channel until EOF or cancellation
func readLines(ctx context.Context, r *terminal.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := r.ReadLine()
			if err != nil {
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func showResult(display *terminal.Display, res commands.Result) {
	switch {
	case res.Err != nil:
		display.PrintError(res.Err)
	case res.Markdown != "":
		display.PrintMarkdown(res.Markdown)
	default:
		for _, line := range res.Lines {
			display.PrintInfo(line)
		}
	}
}
