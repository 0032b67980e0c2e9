package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadCPLFW reads a CPLFW pairs file: two consecutive lines of
// "filename label" form one pair. Label 1 on the first line marks a
// same-person pair; the second line's label is redundant and ignored.
func LoadCPLFW(pairsFile, basePath string) (*Dataset, error) {
	f, err := os.Open(pairsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open pairs file: %w", err)
	}
	defer f.Close()

	pairs, err := parseCPLFW(f, basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pairsFile, err)
	}
	return &Dataset{kind: KindCPLFW, pairs: pairs}, nil
}

func parseCPLFW(r io.Reader, basePath string) ([]Pair, error) {
	var pairs []Pair

	sc := bufio.NewScanner(r)
	lineNo := 0
	havePrev := false
	var prevPath string
	var prevSame bool
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected file name and label, got %q", lineNo, line)
		}

		if !havePrev {
			prevPath = filepath.Join(basePath, fields[0])
			prevSame = fields[1] == "1"
			havePrev = true
			continue
		}

		pairs = append(pairs, Pair{
			Same:  prevSame,
			PathA: prevPath,
			PathB: filepath.Join(basePath, fields[0]),
		})
		havePrev = false
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pairs file: %w", err)
	}
	if havePrev {
		return nil, errors.New("pairs file ends with an unpaired line")
	}
	return pairs, nil
}
