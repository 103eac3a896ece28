package http

import (
	"net/http"
	"strconv"
	"time"

	apperrors "vistoria/pkg/errors"
)

// ExtractTimeRange reads the optional RFC3339 from and to query parameters.
func ExtractTimeRange(r *http.Request) (*time.Time, *time.Time, error) {
	query := r.URL.Query()

	var from, to *time.Time
	if s := query.Get("from"); s != "" {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("invalid from parameter: " + s)
		}
		from = &v
	}
	if s := query.Get("to"); s != "" {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("invalid to parameter: " + s)
		}
		to = &v
	}
	if from != nil && to != nil && !to.After(*from) {
		return nil, nil, apperrors.InvalidInput("to must be after from")
	}

	return from, to, nil
}

// ExtractBool reads a boolean query parameter, false when absent.
func ExtractBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, nil
}
