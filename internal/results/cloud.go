package results

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// CloudResult is the completed Cloud Security Test payload.
type CloudResult struct {
	Parameters struct {
		Target string `json:"target"`
		Quick  bool   `json:"quick"`
	} `json:"parameters"`
	Result struct {
		Brand string `json:"brand"`
		Cloud struct {
			Stats   CloudStats `json:"stats"`
			Buckets Buckets    `json:"buckets"`
		} `json:"cloud"`
	} `json:"result"`
	CreatedAt  Timestamp `json:"created_at"`
	FinishedAt Timestamp `json:"finished_at"`
}

type CloudStats struct {
	BucketsTotal  int `json:"buckets_total"`
	PublicBuckets int `json:"public_buckets"`
	FilesTotal    int `json:"files_total"`
}

// Bucket is one storage bucket found for the target.
type Bucket struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	TotalFiles int    `json:"total_files"`
}

// Buckets groups buckets by provider key. An empty array decodes to an empty
// map.
type Buckets map[string][]Bucket

func (b *Buckets) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list [][]Bucket
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		out := make(Buckets, len(list))
		for i, group := range list {
			out[itoa(i)] = group
		}
		*b = out
		return nil
	}
	var m map[string][]Bucket
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*b = m
	return nil
}

// BucketSummary aggregates one provider group.
type BucketSummary struct {
	Name          string
	Total         int
	PublicBuckets int
	PublicFiles   int
}

// Summaries returns one row per non-empty provider group, ordered by key.
func (b Buckets) Summaries() []BucketSummary {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]BucketSummary, 0, len(keys))
	for _, k := range keys {
		group := b[k]
		if len(group) == 0 {
			continue
		}
		row := BucketSummary{Name: group[0].Type, Total: len(group)}
		for _, item := range group {
			if item.Status == "public" {
				row.PublicBuckets++
			}
			row.PublicFiles += item.TotalFiles
		}
		out = append(out, row)
	}
	return out
}

// DecodeCloud decodes a Cloud Security Test result.
func DecodeCloud(raw []byte) (*CloudResult, error) {
	return decode[CloudResult](Cloud, raw)
}

func (c *CloudResult) validate() error {
	if c.Parameters.Target == "" {
		return missing("parameters.target")
	}
	return nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
