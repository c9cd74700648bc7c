// Copyright (c) 2026 BVK Chaitanya

package hashes

import (
	"bytes"
	"encoding/json"
	"time"
)

// RemoteTime is a timestamp in the "2006-01-02 15:04:05" format used by the
// escrow api.
type RemoteTime struct {
	time.Time
}

func (v RemoteTime) MarshalJSON() ([]byte, error) {
	if v.Time.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(v.Time.Format(time.DateTime))
}

func (v *RemoteTime) UnmarshalJSON(bs []byte) error {
	if bytes.Equal(bs, []byte("null")) {
		*v = RemoteTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(bs, &s); err != nil {
		return err
	}
	if len(s) == 0 {
		*v = RemoteTime{}
		return nil
	}
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		return err
	}
	*v = RemoteTime{Time: t}
	return nil
}
