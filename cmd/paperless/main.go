package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/paperless/paperless-go/chatsession"
	"github.com/paperless/paperless-go/client"
	"github.com/paperless/paperless-go/docsync"
	"github.com/paperless/paperless-go/internal/config"
	"github.com/paperless/paperless-go/searchview"
	"github.com/paperless/paperless-go/uploadflow"
)

var serviceURL string
var debug bool
var stateDir string

const requestTimeout = 30 * time.Second

func dbg(v interface{}) {
	if !debug {
		return
	}
	log.Debug().Interface("data", v).Msg("debug output")
}

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{ServiceURL: "http://localhost:8080", StateDir: ".paperless"}
	}

	rootCmd := &cobra.Command{
		Use:   "paperless",
		Short: "Paperless CLI for managing documents, search, and chat",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitLogger()
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				os.Setenv("PAPERLESS_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				config.SetLogLevel(cfg.Level())
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", cfg.ServiceURL, "Base URL of the document service")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", cfg.StateDir, "Directory for client-local state")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newWaitSummaryCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newChatHistoryCmd())
	rootCmd.AddCommand(newChatClearCmd())

	return rootCmd
}

func newListCmd() *cobra.Command {
	var author, fileType, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			files, err := c.ListFiles(ctx, client.SearchParams{
				Search:   search,
				Author:   author,
				FileType: fileType,
			})
			elapsed := time.Since(start)
			if err != nil {
				log.Error().Err(err).Dur("elapsed", elapsed).Msg("list files failed")
				return err
			}

			dbg(files)
			if len(files) == 0 {
				fmt.Println("No documents found.")
				return nil
			}
			for _, f := range files {
				summary := "pending"
				if f.HasSummary() {
					summary = "ready"
				}
				fmt.Printf("%6d  %-40s  %-20s  %8d bytes  summary:%s\n",
					f.ID, f.Filename, f.Author, f.Size, summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filename filter (optional)")
	cmd.Flags().StringVar(&author, "author", "", "Author filter (optional)")
	cmd.Flags().StringVar(&fileType, "file-type", "", "File type filter (optional)")
	return cmd
}

func newGetCmd() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch one document record",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			rec, err := c.GetFile(ctx, id)
			if err != nil {
				if client.IsNotFound(err) {
					fmt.Println("Document not found.")
					return err
				}
				log.Error().Err(err).Int64("file_id", id).Msg("get file failed")
				return err
			}

			b, _ := json.MarshalIndent(rec, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Document ID (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var query, author, fileType, searchField string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			p := searchview.New(c)
			defer p.Close()
			p.SetText(query)
			p.SetAuthor(author)
			p.SetFileType(fileType)
			p.SetSearchField(searchField)

			start := time.Now()
			resp, err := p.Flush(ctx)
			elapsed := time.Since(start)
			if err != nil {
				log.Error().Err(err).Str("query", query).Dur("elapsed", elapsed).Msg("search failed")
				return err
			}

			if asJSON {
				b, _ := json.MarshalIndent(resp, "", "  ")
				fmt.Println(string(b))
				return nil
			}

			fmt.Printf("%d hits in %dms\n", resp.TotalHits, resp.SearchTimeMs)
			for _, r := range resp.Results {
				fmt.Printf("%6d  %-40s  %-20s  %s\n", r.DocumentID, r.Filename, r.Author, r.FileType)
			}
			if authors := p.Authors(); len(authors) > 0 {
				fmt.Printf("authors: %s\n", strings.Join(authors, ", "))
			}
			if types := p.FileTypes(); len(types) > 0 {
				fmt.Printf("file types: %s\n", strings.Join(types, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Free-text query (blank matches all)")
	cmd.Flags().StringVar(&author, "author", "", "Author filter (optional)")
	cmd.Flags().StringVar(&fileType, "file-type", "", "File type filter (optional)")
	cmd.Flags().StringVar(&searchField, "search-field", "", "Restrict matching to one field (optional)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw response")
	return cmd
}

func newUploadCmd() *cobra.Command {
	var path, author string
	var replace, selectNew bool

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a document, resolving duplicate conflicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			r := uploadflow.New(c)
			filename := filepath.Base(path)
			if err := r.Upload(ctx, filename, f, author); err != nil {
				log.Error().Err(err).Str("filename", filename).Msg("upload failed")
				return err
			}

			conflict := r.Conflict()
			if conflict == nil {
				rec := r.Result()
				dbg(rec)
				fmt.Printf("Uploaded: %d - %s\n", rec.ID, rec.Filename)
				return nil
			}

			fmt.Printf("Duplicate: %q by %s already exists", conflict.Filename, conflict.Author)
			if conflict.ExistingFileID != 0 {
				fmt.Printf(" (id %d)", conflict.ExistingFileID)
			}
			fmt.Println()

			if selectNew {
				r.SelectNew()
				fmt.Println("Selection discarded; choose a different file or author.")
				return nil
			}
			if !replace {
				return fmt.Errorf("upload conflicts with an existing document; re-run with --replace or --select-new")
			}
			if err := r.Replace(ctx); err != nil {
				log.Error().Err(err).Msg("replace failed")
				return err
			}
			rec := r.Result()
			dbg(rec)
			fmt.Printf("Replaced: %d - %s\n", rec.ID, rec.Filename)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Path to the file (required)")
	cmd.Flags().StringVar(&author, "author", "", "Document author (required)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the existing document on conflict")
	cmd.Flags().BoolVar(&selectNew, "select-new", false, "On conflict, discard the selection instead of replacing")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var id int64
	var author, path string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a document's author or replace its content",
		RunE: func(cmd *cobra.Command, args []string) error {
			if author == "" && path == "" {
				return fmt.Errorf("--author or --file is required")
			}

			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			m := docsync.New(c, id)
			if err := m.Start(ctx); err != nil {
				log.Error().Err(err).Int64("file_id", id).Msg("load document failed")
				return err
			}
			defer m.Stop()

			req := client.UpdateRequest{Author: author}
			if path != "" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				req.Filename = filepath.Base(path)
				req.Content = f
			}

			if err := m.BeginEdit(); err != nil {
				return err
			}
			rec, err := m.Save(ctx, req)
			if err != nil {
				log.Error().Err(err).Int64("file_id", id).Msg("update failed")
				return err
			}

			dbg(rec)
			fmt.Printf("Updated: %d - %s (author %s)\n", rec.ID, rec.Filename, rec.Author)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Document ID (required)")
	cmd.Flags().StringVar(&author, "author", "", "New author (optional)")
	cmd.Flags().StringVar(&path, "file", "", "Replacement file (optional)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var id int64
	var async bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			if !async {
				c := client.New(serviceURL, client.WithoutExecutor())
				if err := c.DeleteFile(ctx, id); err != nil {
					log.Error().Err(err).Int64("file_id", id).Msg("delete failed")
					return err
				}
				fmt.Printf("Deleted: %d\n", id)
				return nil
			}

			c := client.New(serviceURL)
			defer func() { _ = c.Close() }() // drain the queue before exit

			ack, err := c.DeleteFileAsync(ctx, id)
			if err != nil {
				log.Error().Err(err).Int64("file_id", id).Msg("enqueue delete failed")
				return err
			}
			dbg(ack)
			if err := c.AwaitDocument(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Delete processed: %d\n", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Document ID (required)")
	cmd.Flags().BoolVar(&async, "async", false, "Enqueue the delete and wait for the queue to drain")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newDownloadCmd() *cobra.Command {
	var id int64
	var out string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a document's content",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			body, filename, err := c.DownloadFile(ctx, id)
			if err != nil {
				log.Error().Err(err).Int64("file_id", id).Msg("download failed")
				return err
			}
			defer func() { _ = body.Close() }()

			if out == "" {
				out = filename
			}
			if out == "" {
				out = fmt.Sprintf("document-%d", id)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			n, err := io.Copy(f, body)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %d bytes to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Document ID (required)")
	cmd.Flags().StringVar(&out, "out", "", "Output path (defaults to the served filename)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newWaitSummaryCmd() *cobra.Command {
	var id int64
	var interval, timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait-summary",
		Short: "Poll a document until its generated summary is ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			m := docsync.New(c, id, docsync.WithPollInterval(interval))
			if err := m.Start(ctx); err != nil {
				log.Error().Err(err).Int64("file_id", id).Msg("load document failed")
				return err
			}
			defer m.Stop()

			if err := m.WaitForSummary(ctx); err != nil {
				return fmt.Errorf("summary not ready: %w", err)
			}
			s := m.Snapshot()
			fmt.Println(s.Record.Summary)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Document ID (required)")
	cmd.Flags().DurationVar(&interval, "interval", docsync.DefaultPollInterval, "Poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall wait timeout")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newChatManager(c *client.Client) (*chatsession.Manager, error) {
	store, err := chatsession.NewFileStore(stateDir)
	if err != nil {
		return nil, fmt.Errorf("open state dir: %w", err)
	}
	return chatsession.NewManager(c, store)
}

func newChatCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat message about the document corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			m, err := newChatManager(c)
			if err != nil {
				return err
			}
			m.Hydrate(ctx)

			sendErr := m.Send(ctx, message)
			msgs := m.Messages()
			if len(msgs) > 0 {
				last := msgs[len(msgs)-1]
				fmt.Printf("%s: %s\n", last.Role, last.Content)
			}
			if sendErr != nil {
				log.Error().Err(sendErr).Str("session_id", m.SessionID()).Msg("chat send failed")
				return sendErr
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "Message text (required)")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newChatHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat-history",
		Short: "Print the current chat session's history",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			m, err := newChatManager(c)
			if err != nil {
				return err
			}
			m.Hydrate(ctx)

			msgs := m.Messages()
			if len(msgs) == 0 {
				fmt.Printf("No messages in session %s.\n", m.SessionID())
				return nil
			}
			fmt.Printf("Session %s:\n", m.SessionID())
			for _, msg := range msgs {
				fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Role, msg.Content)
			}
			return nil
		},
	}
}

func newChatClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat-clear",
		Short: "Delete the current chat session's history and start a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			m, err := newChatManager(c)
			if err != nil {
				return err
			}
			old := m.SessionID()
			if err := m.Clear(ctx); err != nil {
				log.Error().Err(err).Str("session_id", old).Msg("clear failed")
				return err
			}
			fmt.Printf("Cleared session %s; new session %s\n", old, m.SessionID())
			return nil
		},
	}
}
