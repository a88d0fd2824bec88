package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// queryOptions reads the visibility and limit parameters of a GET request:
// expansions=pok,codex1 include_retired=true limit=N profile=<id>.
type queryOptions struct {
	Query          string
	Limit          int
	Expansions     []string
	IncludeRetired *bool
	Profile        string
}

func parseQueryOptions(r *http.Request) (queryOptions, error) {
	q := r.URL.Query()
	opts := queryOptions{Query: q.Get("q"), Profile: q.Get("profile")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid limit: %s", v)
		}
		opts.Limit = n
	}
	if v, ok := q["expansions"]; ok {
		opts.Expansions = []string{}
		for _, part := range v {
			opts.Expansions = append(opts.Expansions, strings.Split(part, ",")...)
		}
	}
	if v := q.Get("include_retired"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid include_retired: %s", v)
		}
		opts.IncludeRetired = &b
	}
	return opts, nil
}
