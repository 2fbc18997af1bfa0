// Package preprocess implements the preprocessing stage: FASTQ ingestion,
// quality filtering, and orchestration of the denoising and taxonomy engine
// ports.
package preprocess

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"

	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/internal/errors"
)

// ReadFastq parses a Sanger-encoded FASTQ file into reads with raw Phred
// quality scores
func ReadFastq(path string) ([]biom.Read, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open FASTQ file %s", path)
	}
	defer f.Close()

	template := linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger)
	sc := seqio.NewScanner(fastq.NewReader(f, template))

	var reads []biom.Read
	for sc.Next() {
		qs := sc.Seq().(*linear.QSeq)
		read := biom.Read{
			ID:   qs.Name(),
			Seq:  make([]byte, len(qs.Seq)),
			Qual: make([]byte, len(qs.Seq)),
		}
		for i, ql := range qs.Seq {
			read.Seq[i] = byte(ql.L)
			read.Qual[i] = byte(ql.Q)
		}
		reads = append(reads, read)
	}
	if err := sc.Error(); err != nil {
		return nil, errors.Wrapf(err, "failed reading FASTQ file %s", path)
	}
	return reads, nil
}

// ReadFastqDir loads every .fastq/.fq file in a directory, one sample per
// file, keyed by the file name without extension
func ReadFastqDir(dir string) (map[core.SampleID][]biom.Read, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list FASTQ directory %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".fastq") || strings.HasSuffix(name, ".fq") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	samples := make(map[core.SampleID][]biom.Read, len(names))
	for _, name := range names {
		reads, err := ReadFastq(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sampleID := core.SampleID(strings.TrimSuffix(strings.TrimSuffix(name, ".fastq"), ".fq"))
		samples[sampleID] = reads
	}
	return samples, nil
}
