package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// preferenceRecord is a row in the preferences key-value table.
type preferenceRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Preference reads a preference slot. Returns "" when the key is unset.
func (c *Client) Preference(ctx context.Context, key string) (string, error) {
	q := url.Values{}
	q.Set("key", "eq."+key)
	q.Set("select", "key,value")

	var records []preferenceRecord
	if err := c.rest(ctx, http.MethodGet, "preferences", q, "", nil, &records); err != nil {
		return "", fmt.Errorf("Preference: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0].Value, nil
}

// SetPreference upserts a preference slot.
func (c *Client) SetPreference(ctx context.Context, key, value string) error {
	prefer := "resolution=merge-duplicates," + preferReturn
	body := preferenceRecord{Key: key, Value: value}

	var records []preferenceRecord
	if err := c.rest(ctx, http.MethodPost, "preferences", nil, prefer, body, &records); err != nil {
		return fmt.Errorf("SetPreference: %w", err)
	}
	return nil
}
