// Copyright (c) 2026 BVK Chaitanya

package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bvk/hashes/hashes"
	"golang.org/x/net/html"
)

type LoginRecord struct {
	Created   string
	Status    string
	IPAddress string
	Location  string
}

func parseLoginHistory(r io.Reader, limit int) ([]*LoginRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	table := find(doc, elementWithClasses("table", "table table-hover table-striped"))
	if table == nil {
		return nil, fmt.Errorf("login history table is missing from the profile page")
	}
	var records []*LoginRecord
	for _, row := range findAll(table, element("tr")) {
		if limit > 0 && len(records) >= limit {
			break
		}
		cells := findAll(row, element("td"))
		if len(cells) < 4 {
			continue
		}
		status := firstText(cells[1])
		if span := find(cells[1], element("span")); span != nil {
			status = firstText(span)
		}
		records = append(records, &LoginRecord{
			Created:   firstText(cells[0]),
			Status:    status,
			IPAddress: firstText(cells[2]),
			Location:  firstText(cells[3]),
		})
	}
	return records, nil
}

// LoginHistory returns the recent logins listed on the profile page. Returns
// at most limit records when limit is positive.
func (m *Manager) LoginHistory(ctx context.Context, limit int) ([]*LoginRecord, error) {
	if m.current == nil {
		return nil, fmt.Errorf("login history requires a login session: %w", hashes.ErrNoSession)
	}
	client := &http.Client{Jar: m.current.Jar, Timeout: m.opts.HttpClientTimeout}
	page, err := m.fetch(ctx, client, http.MethodGet, m.siteURL("/en/profile"), nil)
	if err != nil {
		return nil, fmt.Errorf("could not fetch profile page: %w", err)
	}
	return parseLoginHistory(bytes.NewReader(page), limit)
}
