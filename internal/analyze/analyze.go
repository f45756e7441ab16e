// Package analyze derives visual attributes from the harvested logo store:
// dominant color, minimalism, and the emotion suggested by color warmth.
// All analyses are read-only over the store.
package analyze

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/brandscope/logoharvest/internal/imaging"
	"github.com/brandscope/logoharvest/internal/logo"
)

const mainColorCount = 5

// Analyzer runs color analyses over a finished logo store and writes
// CSV and Markdown reports.
type Analyzer struct {
	store      logo.Store
	reportsDir string
	logger     *zap.Logger
}

// New constructs an Analyzer writing reports under reportsDir.
func New(store logo.Store, reportsDir string, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{store: store, reportsDir: reportsDir, logger: logger}
}

// Color writes analysis_color.csv (logo, dominant RGB, broad group) and a
// Markdown report grouping logos by broad color. The dominant color is
// the heaviest cluster of a 5-color k-means decomposition.
func (a *Analyzer) Color() error {
	rows := [][]string{{"Logo", "Main_Color_RGB", "Color_Group"}}
	groups := make(map[BroadColor][]string)

	for _, entry := range a.store.List() {
		clusters, err := a.mainColors(entry)
		if err != nil {
			a.logger.Warn("logo skipped", zap.String("brand", string(entry.Brand)), zap.Error(err))
			continue
		}
		dominant := clusters[0].Color
		group := ClosestBroadColor(dominant)
		rows = append(rows, []string{
			filepath.Base(entry.Path),
			fmt.Sprintf("(%d, %d, %d)", dominant.R, dominant.G, dominant.B),
			string(group),
		})
		groups[group] = append(groups[group], filepath.Base(entry.Path))
	}

	if err := a.writeCSV("analysis_color.csv", rows); err != nil {
		return err
	}
	return a.writeColorMarkdown(groups)
}

// Minimalism writes analysis_minimalism.csv. A logo is minimalist when
// its five main colors collapse into at most two broad color groups.
func (a *Analyzer) Minimalism() error {
	rows := [][]string{{"Logo", "Minimalist"}}
	for _, entry := range a.store.List() {
		clusters, err := a.mainColors(entry)
		if err != nil {
			a.logger.Warn("logo skipped", zap.String("brand", string(entry.Brand)), zap.Error(err))
			continue
		}
		minimalist := len(broadGroups(clusters)) <= 2
		rows = append(rows, []string{
			filepath.Base(entry.Path),
			fmt.Sprintf("%t", minimalist),
		})
	}
	return a.writeCSV("analysis_minimalism.csv", rows)
}

// Emotion writes analysis_emotion.csv mapping each logo's color warmth
// to one of five labels.
func (a *Analyzer) Emotion() error {
	rows := [][]string{{"Logo", "Emotion"}}
	for _, entry := range a.store.List() {
		clusters, err := a.mainColors(entry)
		if err != nil {
			a.logger.Warn("logo skipped", zap.String("brand", string(entry.Brand)), zap.Error(err))
			continue
		}
		rows = append(rows, []string{
			filepath.Base(entry.Path),
			string(EmotionLabel(clusters)),
		})
	}
	return a.writeCSV("analysis_emotion.csv", rows)
}

// Emotion labels, from strongly warm down to strongly cool.
type Emotion string

const (
	EnergeticPassionate Emotion = "Energetic & Passionate"
	WarmFriendly        Emotion = "Warm & Friendly"
	BalancedNeutral     Emotion = "Balanced & Neutral"
	CalmTrustworthy     Emotion = "Calm & Trustworthy"
	CoolProfessional    Emotion = "Cool & Professional"
)

// EmotionLabel scores warmth over the broad color groups of the given
// clusters. Each group contributes its warmth weight times the number of
// clusters that mapped to it, averaged over the group count.
func EmotionLabel(clusters []Cluster) Emotion {
	counts := broadGroups(clusters)
	if len(counts) == 0 {
		return BalancedNeutral
	}
	var score float64
	for group, count := range counts {
		score += colorWarmth[group] * float64(count)
	}
	score /= float64(len(counts))

	switch {
	case score > 0.5:
		return EnergeticPassionate
	case score > 0:
		return WarmFriendly
	case score < -0.5:
		return CoolProfessional
	case score < 0:
		return CalmTrustworthy
	}
	return BalancedNeutral
}

// broadGroups counts how many clusters map to each broad color group.
func broadGroups(clusters []Cluster) map[BroadColor]int {
	counts := make(map[BroadColor]int)
	for _, c := range clusters {
		counts[ClosestBroadColor(c.Color)]++
	}
	return counts
}

func (a *Analyzer) mainColors(entry logo.StoreEntry) ([]Cluster, error) {
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	clusters := MainColors(img, mainColorCount)
	if len(clusters) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	return clusters, nil
}

func (a *Analyzer) writeCSV(name string, rows [][]string) error {
	if err := os.MkdirAll(a.reportsDir, 0o750); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(a.reportsDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	a.logger.Info("report written", zap.String("path", path), zap.Int("rows", len(rows)-1))
	return nil
}

func (a *Analyzer) writeColorMarkdown(groups map[BroadColor][]string) error {
	path := filepath.Join(a.reportsDir, "color_analysis.md")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create markdown report: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Logo Main Color Analysis\n\n")
	fmt.Fprintf(f, "This document groups logos by their closest broad color category.\n\n")
	for _, group := range broadColorOrder {
		fmt.Fprintf(f, "## %s Logos\n\n", group)
		logos := groups[group]
		if len(logos) == 0 {
			fmt.Fprintf(f, "_No logos in this category._\n")
		} else {
			for _, name := range logos {
				fmt.Fprintf(f, "- **%s**\n", name)
			}
		}
		fmt.Fprintf(f, "\n---\n\n")
	}
	a.logger.Info("report written", zap.String("path", path))
	return nil
}
