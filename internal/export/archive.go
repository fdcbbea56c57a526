package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"listing-forge/internal/compose"
	"listing-forge/internal/listing"
)

// BuildArchive assembles the store-submission zip: listing text, the
// icon set, and every promo that has actually been rendered. Missing
// pieces are simply omitted; the archive is as complete as the project.
func (r *Renderer) BuildArchive(project *listing.Project) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	writeText := func(name, body string) error {
		if strings.TrimSpace(body) == "" {
			return nil
		}
		f, err := w.Create(name)
		if err != nil {
			return err
		}
		_, err = f.Write([]byte(body))
		return err
	}

	if err := writeText("listing/name.txt", project.SelectedName); err != nil {
		return nil, fmt.Errorf("archive name: %w", err)
	}
	if err := writeText("listing/short_description.txt", project.SelectedDescription); err != nil {
		return nil, fmt.Errorf("archive short description: %w", err)
	}
	if err := writeText("listing/description.md", project.LongDescription); err != nil {
		return nil, fmt.Errorf("archive description: %w", err)
	}
	if err := writeText("listing/privacy_policy.md", project.PrivacyPolicy); err != nil {
		return nil, fmt.Errorf("archive privacy policy: %w", err)
	}
	if project.Analysis != nil {
		meta, err := json.MarshalIndent(map[string]any{
			"category":       project.Analysis.Category,
			"targetAudience": project.Analysis.TargetAudience,
			"keywords":       project.Analysis.Keywords,
			"coreFeatures":   project.Analysis.CoreFeatures,
			"tone":           project.Analysis.Tone,
		}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("archive metadata: %w", err)
		}
		if err := writeBinary(w, "listing/metadata.json", meta); err != nil {
			return nil, err
		}
	}

	if icon := project.MainIcon(); icon != nil {
		set, err := IconSet(icon.Data)
		if err != nil {
			return nil, fmt.Errorf("archive icons: %w", err)
		}
		for _, size := range compose.IconExportSizes {
			if err := writeBinary(w, fmt.Sprintf("icons/icon-%d.png", size), set[size]); err != nil {
				return nil, err
			}
		}
	}

	if err := r.writeSlides(w, project.Screenshots, "screenshots/screenshot-%02d"); err != nil {
		return nil, err
	}
	if err := r.writeSlides(w, project.Marquees, "promo/marquee-%02d"); err != nil {
		return nil, err
	}
	if err := r.writeSlides(w, project.SmallTiles, "promo/small-tile-%02d"); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSlides adds rendered slides only; unrendered and undecodable
// entries are skipped so a partial project still exports.
func (r *Renderer) writeSlides(w *zip.Writer, slides []listing.Slide, pattern string) error {
	n := 0
	for _, slide := range slides {
		if slide.Rendered == "" {
			continue
		}
		img, err := compose.DecodeDataURL(slide.Rendered)
		if err != nil {
			r.log.Warn("skipping undecodable rendered slide", "slide", slide.ID, "error", err)
			continue
		}
		n++

		pngBytes, err := compose.EncodePNG(img)
		if err != nil {
			return fmt.Errorf("encode %s: %w", slide.ID, err)
		}
		if err := writeBinary(w, fmt.Sprintf(pattern, n)+".png", pngBytes); err != nil {
			return err
		}

		if r.webp {
			webpBytes, err := compose.EncodeWebP(img, r.webpQuality)
			if err != nil {
				r.log.Warn("webp variant failed", "slide", slide.ID, "error", err)
				continue
			}
			if err := writeBinary(w, fmt.Sprintf(pattern, n)+".webp", webpBytes); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeBinary(w *zip.Writer, name string, data []byte) error {
	f, err := w.Create(name)
	if err != nil {
		return fmt.Errorf("archive %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("archive %s: %w", name, err)
	}
	return nil
}
