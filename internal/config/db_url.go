package config

import "net/url"

// DatabaseURL returns DBURL, asking lib/pq for text results when
// DBDisablePreparedBinary is set and the URL does not already decide.
func (c Config) DatabaseURL() string {
	return normalizeDBURL(c.DBURL, c.DBDisablePreparedBinary)
}

func normalizeDBURL(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") != "" {
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
