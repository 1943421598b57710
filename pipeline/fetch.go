// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/core"
)

// Fetch opens the source archive and writes one raw document per entry that
// belongs to a target partition. source is an http(s) URL or a local path;
// a URL is downloaded to a temporary file first, retrying transient
// failures. An unreachable source aborts the stage (ErrStageFatal); a bad
// archive entry only fails that document.
//
// Fetch checkpoints on output presence alone: a raw document already in the
// store is skipped without comparing bytes, so a moved or re-served archive
// does not force a refetch.
func (p *Pipeline) Fetch(ctx context.Context, source string, cfg RunConfig) (*core.StageReport, error) {
	if source == "" {
		return nil, ErrSourceRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	archive, cleanup, err := p.openArchive(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive %s: %w", ErrStageFatal, source, err)
	}
	defer cleanup()

	entries := matchEntries(archive, cfg.Partitions)
	p.logger.Info("stage starting",
		"stage", core.StageFetch.String(),
		"entries", len(entries),
		"source", source,
		"skipExisting", cfg.SkipExisting,
	)

	report := &core.StageReport{
		Stage:      core.StageFetch,
		Partitions: cfg.Partitions,
		StartedAt:  time.Now().UTC(),
	}
	tracker := NewProgressTracker(p.progressWriter(), len(entries), p.progressInterval)
	tracker.Start()

	// Entries are read sequentially: zip decompression shares the one
	// underlying reader, so fanning out buys nothing here.
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		status, err := p.fetchEntry(ctx, entry, cfg)
		switch {
		case err != nil && isCancellation(err):
		case err != nil:
			p.logger.Warn("archive entry failed", "stage", "fetch", "entry", entry.file.Name, "err", err)
			report.Failed = append(report.Failed, core.FailedDoc{Id: entry.reportID(), Reason: err.Error()})
		case status == docSkipped:
			report.Skipped++
		default:
			report.Succeeded++
		}
		tracker.Increment(1)
	}

	if ctx.Err() == nil {
		tracker.Finish()
	}
	sortFailed(report.Failed)
	report.Duration = time.Since(report.StartedAt)
	p.logStageDone(report)
	return report, ctx.Err()
}

// archiveEntry is one zip member that belongs to a target partition.
type archiveEntry struct {
	file      *zip.File
	partition core.Partition
	id        core.DocID
}

// reportID names the entry in failure reports even when no valid DocID
// could be derived from its path.
func (e archiveEntry) reportID() core.DocID {
	if e.id != "" {
		return e.id
	}
	return core.DocID(e.file.Name)
}

// matchEntries selects the archive members under a target partition
// directory. Everything else in the archive is outside the run and ignored.
func matchEntries(archive *zip.Reader, partitions []core.Partition) []archiveEntry {
	targets := make(map[core.Partition]bool, len(partitions))
	for _, part := range partitions {
		targets[part] = true
	}

	var entries []archiveEntry
	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}
		part, ok := entryPartition(f.Name)
		if !ok || !targets[part] {
			continue
		}
		entries = append(entries, archiveEntry{
			file:      f,
			partition: part,
			id:        core.DocIDFromEntry(f.Name),
		})
	}
	return entries
}

// entryPartition extracts the partition directory from an entry path:
// "2024/2024-0123.xml" lives in partition "2024". Entries at the archive
// root belong to no partition.
func entryPartition(name string) (core.Partition, bool) {
	name = strings.TrimPrefix(name, "./")
	i := strings.IndexByte(name, '/')
	if i <= 0 {
		return "", false
	}
	return core.Partition(name[:i]), true
}

// fetchEntry writes one archive member as a raw document. An unreadable or
// invalid member is a per-document failure.
func (p *Pipeline) fetchEntry(ctx context.Context, entry archiveEntry, cfg RunConfig) (docStatus, error) {
	if err := core.ValidateDocID(entry.id); err != nil {
		return docProcessed, err
	}

	key := blob.StageKey(core.StageFetch, entry.partition, entry.id)
	if cfg.SkipExisting {
		exists, err := p.store.Exists(ctx, key)
		if err != nil {
			return docProcessed, err
		}
		if exists {
			return docSkipped, nil
		}
	}

	content, err := readEntry(entry.file)
	if err != nil {
		return docProcessed, fmt.Errorf("read archive entry %s: %w", entry.file.Name, err)
	}

	raw := core.RawDocument{
		Id:           entry.id,
		Partition:    entry.partition,
		SourceName:   entry.file.Name,
		SourceFormat: core.FormatFromEntry(entry.file.Name),
		Content:      content,
		FetchedAt:    time.Now().UTC(),
	}
	if err := core.ValidateRawDocument(&raw); err != nil {
		return docProcessed, err
	}

	if err := p.store.Put(ctx, key, blob.MarshalRawDocument(&raw)); err != nil {
		return docProcessed, fmt.Errorf("store raw document: %w", err)
	}
	return docProcessed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// openArchive opens the source as a zip. The cleanup func releases the
// reader and any temporary download.
func (p *Pipeline) openArchive(ctx context.Context, source string) (*zip.Reader, func(), error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.downloadArchive(ctx, source)
	}

	rc, err := zip.OpenReader(source)
	if err != nil {
		return nil, nil, err
	}
	return &rc.Reader, func() { rc.Close() }, nil
}

func (p *Pipeline) downloadArchive(ctx context.Context, url string) (*zip.Reader, func(), error) {
	tmp, err := os.CreateTemp("", "lexit-archive-*.zip")
	if err != nil {
		return nil, nil, err
	}
	tmpName := tmp.Name()
	tmp.Close()
	discard := func() { os.Remove(tmpName) }

	err = RetryWithBackoff(ctx, func() error {
		return p.downloadTo(ctx, url, tmpName)
	}, p.maxRetries, p.retryBaseDelay, downloadRetryable)
	if err != nil {
		discard()
		return nil, nil, fmt.Errorf("download %s: %w", url, err)
	}

	rc, err := zip.OpenReader(tmpName)
	if err != nil {
		discard()
		return nil, nil, fmt.Errorf("read downloaded archive: %w", err)
	}
	return &rc.Reader, func() { rc.Close(); discard() }, nil
}

// downloadTo streams one GET attempt into path, truncating any previous
// attempt's partial bytes.
func (p *Pipeline) downloadTo(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &downloadError{status: resp.StatusCode}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// downloadError is a non-success HTTP status while fetching the archive.
type downloadError struct {
	status int
}

func (e *downloadError) Error() string {
	return fmt.Sprintf("archive source returned status %d", e.status)
}

// downloadRetryable reports whether a download failure is worth another
// attempt. Rate limiting, server errors, network failures, and short reads
// are; client errors and cancellation are not.
func downloadRetryable(err error) bool {
	if isCancellation(err) {
		return false
	}
	var de *downloadError
	if errors.As(err, &de) {
		return de.status == http.StatusTooManyRequests || de.status >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
