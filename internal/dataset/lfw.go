package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadLFW reads an LFW pairs file. Same-person lines carry three
// tab-separated fields (name, nr, nr), different-person lines four
// (name, nr, name, nr). Image paths follow the canonical LFW layout
// {base}/{name}/{name}_{nr}.jpg with the number zero-padded to four digits.
func LoadLFW(pairsFile, basePath string) (*Dataset, error) {
	f, err := os.Open(pairsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open pairs file: %w", err)
	}
	defer f.Close()

	pairs, err := parseLFW(f, basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pairsFile, err)
	}
	return &Dataset{kind: KindLFW, pairs: pairs}, nil
}

func parseLFW(r io.Reader, basePath string) ([]Pair, error) {
	var pairs []Pair

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if lineNo == 1 {
			// The first line announces fold counts, not a pair.
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		switch len(fields) {
		case 3:
			a, err := lfwPath(basePath, fields[0], fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			b, err := lfwPath(basePath, fields[0], fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			pairs = append(pairs, Pair{Same: true, PathA: a, PathB: b})
		case 4:
			a, err := lfwPath(basePath, fields[0], fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			b, err := lfwPath(basePath, fields[2], fields[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			pairs = append(pairs, Pair{Same: false, PathA: a, PathB: b})
		default:
			return nil, fmt.Errorf("line %d: expected 3 or 4 fields, got %d", lineNo, len(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pairs file: %w", err)
	}
	return pairs, nil
}

func lfwPath(basePath, name, nr string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(nr))
	if err != nil {
		return "", fmt.Errorf("invalid image number %q", nr)
	}
	return filepath.Join(basePath, name, fmt.Sprintf("%s_%04d.jpg", name, n)), nil
}
