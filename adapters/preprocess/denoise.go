package preprocess

import (
	"context"
	"fmt"
	"sort"

	"gobiome/domain/biom"
	"gobiome/domain/core"
)

// DereplicatingDenoiser is the reference denoiser: it collapses identical
// sequences into features and counts them per sample. It performs no error
// modeling; a DADA2-class engine plugs in through the same port when real
// denoising is needed.
type DereplicatingDenoiser struct{}

// NewDereplicatingDenoiser creates the reference denoiser
func NewDereplicatingDenoiser() *DereplicatingDenoiser {
	return &DereplicatingDenoiser{}
}

// Denoise builds an abundance table of exact sequence variants.
// Feature IDs are assigned by descending total abundance (ASV1 is the most
// abundant variant), matching the usual ASV table convention.
func (d *DereplicatingDenoiser) Denoise(ctx context.Context, reads map[core.SampleID][]biom.Read) (*biom.AbundanceTable, map[core.FeatureID]string, error) {
	samples := make([]core.SampleID, 0, len(reads))
	for s := range reads {
		samples = append(samples, s)
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	// sequence -> per-sample counts
	variants := make(map[string][]int64)
	for si, s := range samples {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}
		for _, r := range reads[s] {
			seq := string(r.Seq)
			row, ok := variants[seq]
			if !ok {
				row = make([]int64, len(samples))
				variants[seq] = row
			}
			row[si]++
		}
	}

	// Rank variants by total abundance, ties broken by sequence
	type variant struct {
		seq   string
		total int64
	}
	ranked := make([]variant, 0, len(variants))
	for seq, row := range variants {
		var total int64
		for _, c := range row {
			total += c
		}
		ranked = append(ranked, variant{seq: seq, total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total != ranked[j].total {
			return ranked[i].total > ranked[j].total
		}
		return ranked[i].seq < ranked[j].seq
	})

	counts := make(map[core.FeatureID][]int64, len(ranked))
	sequences := make(map[core.FeatureID]string, len(ranked))
	for i, v := range ranked {
		id := core.FeatureID(fmt.Sprintf("ASV%d", i+1))
		counts[id] = variants[v.seq]
		sequences[id] = v.seq
	}

	table, err := biom.NewAbundanceTable(samples, counts)
	if err != nil {
		return nil, nil, err
	}
	return table, sequences, nil
}
