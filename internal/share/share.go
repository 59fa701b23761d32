// Package share implements the item interchange format: a compact record
// with abbreviated field names, DEFLATE-compressed and URL-safe
// base64-encoded so it fits in a query parameter. Decoding expands the
// record back to a draft (an item minus its id) the receiver can import.
package share

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/TheSylus/Hmmm/internal/domain"
)

// maxDecodedSize bounds decompression so a hostile share code cannot balloon
// in memory.
const maxDecodedSize = 1 << 20

// compactRecord is the wire shape. The image is deliberately absent: it is a
// device-local payload reference and meaningless on another device.
type compactRecord struct {
	N  string   `json:"n"`
	R  int      `json:"r"`
	T  string   `json:"t,omitempty"`
	No string   `json:"no,omitempty"`
	Tg []string `json:"tg,omitempty"`
	Ns string   `json:"ns,omitempty"`
	Ig []string `json:"ig,omitempty"`
	Al []string `json:"al,omitempty"`
	Lf bool     `json:"lf,omitempty"`
	Vg bool     `json:"vg,omitempty"`
	Gf bool     `json:"gf,omitempty"`
	Rn string   `json:"rn,omitempty"`
	Ct string   `json:"ct,omitempty"`
	Pr float64  `json:"pr,omitempty"`
}

func Encode(item domain.Item) (string, error) {
	rec := compactRecord{
		N:  item.Name,
		R:  item.Rating,
		T:  string(item.ItemType),
		No: item.Notes,
		Tg: item.Tags,
		Ns: string(item.NutriScore),
		Ig: item.Ingredients,
		Al: item.Allergens,
		Lf: item.IsLactoseFree,
		Vg: item.IsVegan,
		Gf: item.IsGlutenFree,
		Rn: item.RestaurantName,
		Ct: item.CuisineType,
		Pr: item.Price,
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal share record: %w", err)
	}

	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("failed to create compressor: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		return "", fmt.Errorf("failed to compress share record: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress share record: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func Decode(code string) (domain.Draft, error) {
	var draft domain.Draft

	compressed, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return draft, fmt.Errorf("invalid share code: %w", err)
	}

	zr := flate.NewReader(bytes.NewReader(compressed))
	payload, err := io.ReadAll(io.LimitReader(zr, maxDecodedSize))
	if cerr := zr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return draft, fmt.Errorf("invalid share code: %w", err)
	}

	var rec compactRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return draft, fmt.Errorf("invalid share code: %w", err)
	}

	draft = domain.Draft{
		Name:           rec.N,
		Rating:         rec.R,
		ItemType:       domain.ItemType(rec.T),
		Notes:          rec.No,
		Tags:           rec.Tg,
		NutriScore:     domain.NutriScore(rec.Ns),
		Ingredients:    rec.Ig,
		Allergens:      rec.Al,
		IsLactoseFree:  rec.Lf,
		IsVegan:        rec.Vg,
		IsGlutenFree:   rec.Gf,
		RestaurantName: rec.Rn,
		CuisineType:    rec.Ct,
		Price:          rec.Pr,
	}
	if draft.ItemType == "" {
		draft.ItemType = domain.ItemTypeProduct
	}
	return draft, nil
}
