// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package report

// Row is one raw report row handed over by the GA4 client: ordered
// dimension values aligned positionally with ordered metric values.
// Either slice may be shorter than expected or empty; the normalizer
// coerces missing positions instead of failing.
type Row struct {
	Dimensions []string
	Metrics    []string
}

// Result is a raw report result: an ordered sequence of rows plus the
// upstream row count. May be empty.
type Result struct {
	Rows     []Row
	RowCount int
}

// ActiveUsersPayload is the realtime-active response body.
type ActiveUsersPayload struct {
	TotalActive int    `json:"totalActive"`
	FetchedAt   string `json:"fetchedAt"`
}

// PageRow is one realtime-pages row.
type PageRow struct {
	PageTitle   string `json:"pageTitle"`
	ActiveUsers int    `json:"activeUsers"`
}

// PagesPayload is the realtime-pages response body.
type PagesPayload struct {
	Rows      []PageRow `json:"rows"`
	FetchedAt string    `json:"fetchedAt"`
}

// URLRow is one urls row.
type URLRow struct {
	PageLocation    string `json:"pageLocation"`
	ScreenPageViews int    `json:"screenPageViews"`
}

// URLsPayload is the urls response body.
type URLsPayload struct {
	Rows      []URLRow `json:"rows"`
	RowCount  int      `json:"rowCount"`
	FetchedAt string   `json:"fetchedAt"`
}

// TrafficRow is one traffic row.
type TrafficRow struct {
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Sessions int    `json:"sessions"`
}

// TrafficPayload is the traffic response body.
type TrafficPayload struct {
	Rows      []TrafficRow `json:"rows"`
	RowCount  int          `json:"rowCount"`
	FetchedAt string       `json:"fetchedAt"`
}

// CountryRow is one top-countries row.
type CountryRow struct {
	Country     string `json:"country"`
	ActiveUsers int    `json:"activeUsers"`
}

// CountriesPayload is the top-countries response body.
type CountriesPayload struct {
	Rows      []CountryRow `json:"rows"`
	FetchedAt string       `json:"fetchedAt"`
}
