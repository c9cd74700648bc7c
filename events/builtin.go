// Copyright (c) 2026 BVK Chaitanya

package events

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bvk/hashes/ctxutil"
	"github.com/bvk/hashes/hashes"
	"github.com/bvk/hashes/tables"
)

// PrintHandler prints the new jobs as a table followed by their hints.
func PrintHandler(w io.Writer) Handler {
	return HandlerFunc(func(ctx context.Context, msg *hashes.WebsocketMessage) error {
		if len(msg.New) == 0 {
			return nil
		}
		tables.Jobs(msg.New, 0).Render(w)
		for _, job := range msg.New {
			if job.Hints != nil && len(*job.Hints) != 0 {
				fmt.Fprintf(w, "Hint for job id %d:\n%s\n", job.ID, *job.Hints)
			}
		}
		return nil
	})
}

// LeftListOpener opens the left list download of a job.
type LeftListOpener interface {
	OpenLeftList(ctx context.Context, leftList string) (io.ReadCloser, int64, error)
}

// DownloadHandler appends the left list of every new job to a <id>_left.txt
// file in the directory. Successive downloads are separated by the delay.
func DownloadHandler(opener LeftListOpener, dir string, delay time.Duration, w io.Writer) Handler {
	return HandlerFunc(func(ctx context.Context, msg *hashes.WebsocketMessage) error {
		for i, job := range msg.New {
			if i > 0 && delay > 0 {
				if err := ctxutil.Sleep(ctx, delay); err != nil {
					return err
				}
			}
			fpath := filepath.Join(dir, fmt.Sprintf("%d_left.txt", job.ID))
			if err := appendLeftList(ctx, opener, job, fpath); err != nil {
				slog.Error("could not download left list for new job", "job", job.ID, "err", err)
				return err
			}
			fmt.Fprintf(w, "Left list for job id %d downloaded to %s.\n", job.ID, fpath)
			if job.Hints != nil && len(*job.Hints) != 0 {
				fmt.Fprintf(w, "Hint for job id %d:\n%s\n", job.ID, *job.Hints)
			}
		}
		return nil
	})
}

func appendLeftList(ctx context.Context, opener LeftListOpener, job *hashes.Job, fpath string) error {
	body, _, err := opener.OpenLeftList(ctx, job.LeftList)
	if err != nil {
		return err
	}
	defer body.Close()

	fp, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fp, body); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// Sender delivers a notification message.
type Sender interface {
	SendMessage(ctx context.Context, at time.Time, text string) error
}

// FormatNotification returns a one line summary for each new job.
func FormatNotification(jobs []*hashes.Job) string {
	var sb strings.Builder
	for i, job := range jobs {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "New job %d: %d %s hashes at %s %s ($%s) per hash",
			job.ID, job.LeftHashes, job.AlgorithmName, job.PricePerHash, job.Currency, job.PricePerHashUSD)
	}
	return sb.String()
}

// NotifyHandler forwards a summary of the new jobs to the sender.
func NotifyHandler(sender Sender) Handler {
	return HandlerFunc(func(ctx context.Context, msg *hashes.WebsocketMessage) error {
		if len(msg.New) == 0 {
			return nil
		}
		return sender.SendMessage(ctx, time.Now(), FormatNotification(msg.New))
	})
}
