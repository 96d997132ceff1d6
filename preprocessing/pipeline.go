package preprocessing

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// Pipeline は Stage を順に適用する。各 Stage は前の Stage の出力で学習する
type Pipeline struct {
	Stages []Stage
	// Stats は Stages と同じ順序の学習済み統計量。未学習なら nil
	Stats []Statistics
}

// NewPipeline は新しいPipelineを作成する
//
// 使用例:
//
//	numeric := preprocessing.NewPipeline(
//	    preprocessing.NewSimpleImputer(preprocessing.StrategyMedian),
//	    preprocessing.NewStandardScalerDefault(),
//	)
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{Stages: stages}
}

// IsFitted は全ての Stage が学習済みかどうかを返す
func (p *Pipeline) IsFitted() bool {
	return len(p.Stages) > 0 && len(p.Stats) == len(p.Stages)
}

// Fit は各 Stage を順に学習・変換し、最後の Stage の出力を返す
// 途中で失敗した場合、既存の統計量は変更されない
func (p *Pipeline) Fit(cols []Column) ([]Column, error) {
	if len(p.Stages) == 0 {
		return nil, errors.NewConfigurationError("Pipeline.Fit", errors.New("pipeline has no stages"))
	}

	stats := make([]Statistics, len(p.Stages))
	current := cols
	for i, stage := range p.Stages {
		s, err := stage.Fit(current)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %d (%s)", i, stage.Name())
		}
		current, err = stage.Apply(current, s)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %d (%s)", i, stage.Name())
		}
		stats[i] = s
	}
	p.Stats = stats
	return current, nil
}

// Apply は学習済みの統計量だけを使って列を変換する
func (p *Pipeline) Apply(cols []Column) ([]Column, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Apply")
	}

	current := cols
	for i, stage := range p.Stages {
		var err error
		current, err = stage.Apply(current, p.Stats[i])
		if err != nil {
			return nil, errors.Wrapf(err, "stage %d (%s)", i, stage.Name())
		}
	}
	return current, nil
}

// String は Stage の並びと学習済み統計量を返す
func (p *Pipeline) String() string {
	var b strings.Builder
	for i, stage := range p.Stages {
		fmt.Fprintf(&b, "  %d. %s", i+1, stage.Name())
		if p.IsFitted() {
			fmt.Fprintf(&b, " [%s]", p.Stats[i])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
