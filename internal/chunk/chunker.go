// Package chunk implements the chunker (C3): a pure function splitting a
// filing's sections into a flat, ordered list of overlapping,
// metadata-tagged chunks. No I/O.
package chunk

import (
	"strings"

	"github.com/codekshitij/toshi/internal/filing"
)

// Defaults per §3/§4.3. Named constants, not API parameters — exposing
// them would invite drift between ingestion and retrieval assumptions.
const (
	ChunkSizeWords = 400
	OverlapWords   = 50
	MinChunkWords  = 50
	Stride         = ChunkSizeWords - OverlapWords // 350
)

// ChunkFiling splits every non-empty, sufficiently long section of f into
// chunks, assigning deterministic chunk_ids and propagating full
// provenance plus the capped parent-section excerpt into each chunk.
func ChunkFiling(f filing.Filing) []filing.Chunk {
	var all []filing.Chunk
	for _, section := range filing.CanonicalSections {
		text := f.Sections[section]
		if text == "" || len(strings.Fields(text)) < MinChunkWords {
			continue
		}
		all = append(all, chunkSection(f, section, text)...)
	}
	return all
}

func chunkSection(f filing.Filing, section, text string) []filing.Chunk {
	words := strings.Fields(text)
	parent := text
	if len(parent) > filing.ParentSectionCap {
		parent = parent[:filing.ParentSectionCap]
	}

	var chunks []filing.Chunk
	index := 0
	for start := 0; start < len(words); start += Stride {
		end := start + ChunkSizeWords
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]
		if len(window) < MinChunkWords {
			break
		}
		chunks = append(chunks, filing.Chunk{
			ChunkID:       filing.ChunkID(f.CompanyID, f.Year, section, index),
			Text:          strings.Join(window, " "),
			Company:       f.Company,
			CompanyID:     f.CompanyID,
			Year:          f.Year,
			Quarter:       f.Quarter,
			FilingType:    f.FilingType,
			Section:       section,
			ParentSection: parent,
		})
		index++
		if end == len(words) {
			break
		}
	}
	return chunks
}

// Stats summarizes a chunk set for ingestion logging.
type Stats struct {
	Total     int
	BySection map[string]int
	ByYear    map[string]int
	AvgWords  int
}

// ComputeStats mirrors the original implementation's debugging helper.
func ComputeStats(chunks []filing.Chunk) Stats {
	s := Stats{BySection: map[string]int{}, ByYear: map[string]int{}}
	if len(chunks) == 0 {
		return s
	}
	total := 0
	for _, c := range chunks {
		s.BySection[c.Section]++
		s.ByYear[c.Year]++
		total += len(strings.Fields(c.Text))
	}
	s.Total = len(chunks)
	s.AvgWords = total / len(chunks)
	return s
}
