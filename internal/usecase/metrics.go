package usecase

import "time"

// PipelineMetrics receives counters from the listener and the scorer.
type PipelineMetrics interface {
	ObservePoll(err error)
	ObserveTransition(to string)
	SetTrackedMatches(n int)
	ObservePredictionScored(outcome string)
	ObserveScoringFailure()
	ObserveScoringDuration(d time.Duration)
}

type nopPipelineMetrics struct{}

func (nopPipelineMetrics) ObservePoll(error)                    {}
func (nopPipelineMetrics) ObserveTransition(string)             {}
func (nopPipelineMetrics) SetTrackedMatches(int)                {}
func (nopPipelineMetrics) ObservePredictionScored(string)       {}
func (nopPipelineMetrics) ObserveScoringFailure()               {}
func (nopPipelineMetrics) ObserveScoringDuration(time.Duration) {}
