// Package export renders search results for the terminal and for files
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aimerfeng/PawPals/internal/present"
	"github.com/aimerfeng/PawPals/internal/search"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// ParseFormat validates an output format; empty means table
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatCSV, FormatJSON, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

type WriteOptions struct {
	ColorEnabled bool
}

// WriteResults writes results in the given format, preserving their order
func WriteResults(w io.Writer, results []search.SearchResult, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, results)
	case FormatCSV:
		return writeCSV(w, results)
	case FormatMarkdown:
		return writeMarkdown(w, results)
	default:
		return writeTable(w, results, opts)
	}
}

func writeJSON(w io.Writer, results []search.SearchResult) error {
	if results == nil {
		results = []search.SearchResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeCSV(w io.Writer, results []search.SearchResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for i := range results {
		if err := writer.Write(csvRow(&results[i])); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, results []search.SearchResult, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, card := range present.Cards(results) {
		fmt.Fprintln(tw, strings.Join(tableRow(card, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, results []search.SearchResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, card := range present.Cards(results) {
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(card.Title), card.Kind),
			fmt.Sprintf("  Price: %s", card.PriceLabel),
		}
		if card.ServiceText != "" {
			lines = append(lines, fmt.Sprintf("  Services: %s", safe(card.ServiceText)))
		}
		if card.RatingLabel != "" {
			lines = append(lines, fmt.Sprintf("  Rating: %s", card.RatingLabel))
		}
		if card.Distance != "" {
			lines = append(lines, fmt.Sprintf("  Distance: %s", card.Distance))
		}
		if card.Address != "" {
			lines = append(lines, fmt.Sprintf("  Address: %s", safe(card.Address)))
		}
		if len(card.Breeds) > 0 {
			lines = append(lines, fmt.Sprintf("  Breeds: %s", strings.Join(card.Breeds, ", ")))
		}
		if card.Description != "" {
			lines = append(lines, fmt.Sprintf("  Summary: %s", safe(card.Description)))
		}
		lines = append(lines, fmt.Sprintf("  Details: %s", card.DetailsPath))
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"id",
		"kind",
		"name",
		"service_type",
		"services",
		"price",
		"rate_type",
		"rating",
		"total_reviews",
		"distance_miles",
		"lat",
		"lng",
		"address",
		"breeds",
		"details_path",
	}
}

func csvRow(r *search.SearchResult) []string {
	kind := "job"
	if r.IsProvider {
		kind = "provider"
	}
	return []string{
		r.ID,
		kind,
		r.DisplayName,
		string(r.ServiceType),
		r.ServiceLabel,
		r.Price,
		string(r.RateType),
		optFloat(r.Rating, 2),
		optInt(r.TotalReviews),
		optFloat(r.DistanceMiles, 2),
		strconv.FormatFloat(r.Location.Lat, 'f', -1, 64),
		strconv.FormatFloat(r.Location.Lng, 'f', -1, 64),
		r.Location.Address,
		strings.Join(r.Breeds, ";"),
		r.DetailsPath,
	}
}

func tableHeader() []string {
	return []string{
		"kind",
		"title",
		"price",
		"rating",
		"distance",
	}
}

func tableRow(card present.Card, output *termenv.Output, opts WriteOptions) []string {
	const priceColor = "2"

	price := card.PriceLabel
	if opts.ColorEnabled {
		price = output.String(price).Foreground(output.Color(priceColor)).String()
	}
	return []string{
		card.Kind,
		safe(card.Title),
		price,
		dash(card.RatingLabel),
		dash(card.Distance),
	}
}

func optFloat(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func safe(value string) string {
	return strings.TrimSpace(value)
}
