package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docschema/docschema/internal/template"
	"github.com/docschema/docschema/pkg/debounce"
	"github.com/docschema/docschema/pkg/logger"
	"github.com/docschema/docschema/pkg/middleware"
)

type syncOptions struct {
	server   string
	customer string
	token    string
	id       string
	watch    bool
	delay    time.Duration
}

func syncCmd() *cobra.Command {
	var o syncOptions
	cmd := &cobra.Command{
		Use:   "sync <template-file>",
		Short: "Push a template file to a docschema server",
		Long: `Creates the template on the server, or updates it when --id is given or the
file carries an id. With --watch the file is pushed again after every edit;
bursts of writes within --debounce are sent as one update.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			c := &client{base: strings.TrimRight(o.server, "/"), customer: o.customer, token: o.token, http: &http.Client{Timeout: 30 * time.Second}}
			s := &syncer{path: args[0], id: o.id, client: c}
			if err := s.push(ctx); err != nil {
				return err
			}
			if !o.watch {
				return nil
			}
			return s.watch(ctx, o.delay)
		},
	}
	cmd.Flags().StringVar(&o.server, "server", "http://localhost:5001", "docschema base URL")
	cmd.Flags().StringVar(&o.customer, "customer", "", "Customer id sent as "+middleware.HeaderCustomerID)
	cmd.Flags().StringVar(&o.token, "token", "", "Bearer token, used instead of --customer")
	cmd.Flags().StringVar(&o.id, "id", "", "Template id to update")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "Keep running and push on every change")
	cmd.Flags().DurationVar(&o.delay, "debounce", debounce.DefaultDelay, "Quiet period before pushing a change")
	return cmd
}

type client struct {
	base     string
	customer string
	token    string
	http     *http.Client
}

func (c *client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.customer != "" {
		req.Header.Set(middleware.HeaderCustomerID, c.customer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// syncer pushes one template file. The id learned from a create is reused
// for later pushes.
type syncer struct {
	path   string
	id     string
	client *client
}

// syncBody carries every group explicitly so an emptied group in the file
// clears it on the server.
type syncBody struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	ConnectionID   string           `json:"connectionId,omitempty"`
	ObjectFields   []template.Field `json:"objectFields"`
	ContactFields  []template.Field `json:"contactFields"`
	LineItemFields []template.Field `json:"lineItemFields"`
}

type pushResponse struct {
	ID       string             `json:"id"`
	Warnings []template.Warning `json:"warnings"`
}

func (s *syncer) push(ctx context.Context) error {
	t, err := loadTemplate(s.path)
	if err != nil {
		return err
	}
	if s.id == "" {
		s.id = t.ID
	}
	body := syncBody{
		Name:           t.Name,
		Description:    t.Description,
		ConnectionID:   t.ConnectionID,
		ObjectFields:   t.ObjectFields,
		ContactFields:  t.ContactFields,
		LineItemFields: t.LineItemFields,
	}
	var resp pushResponse
	if s.id == "" {
		if err := s.client.do(ctx, http.MethodPost, "/api/document-templates", body, &resp); err != nil {
			return err
		}
		s.id = resp.ID
		logger.Infof("created template %s from %s", s.id, s.path)
	} else {
		if err := s.client.do(ctx, http.MethodPut, "/api/document-templates/"+s.id, body, &resp); err != nil {
			return err
		}
		logger.Infof("updated template %s from %s", s.id, s.path)
	}
	for _, w := range resp.Warnings {
		logger.Warnw("server lint", "template", s.id, "warning", w.String())
	}
	return nil
}

// watch pushes the file after each burst of edits until ctx is done. The
// directory is watched rather than the file so editors that save by rename
// keep being tracked.
func (s *syncer) watch(ctx context.Context, delay time.Duration) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	d := debounce.NewWithContext(ctx, delay, func() {
		if err := s.push(ctx); err != nil {
			logger.Errorf("sync failed: %v", err)
		}
	})
	defer d.Stop()

	logger.Infof("watching %s", abs)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				logger.Debugf("change detected: %s %s", ev.Op, ev.Name)
				d.Trigger()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("watcher error: %v", err)
		}
	}
}
