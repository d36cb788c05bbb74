package presenter

import (
	"github.com/johnquangdev/talk-tracer/internal/adapter/dto/meeting"
	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/talk-tracer/internal/usecase/meeting"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.Meeting) *meeting.MeetingResponse {
	if m == nil {
		return nil
	}

	response := &meeting.MeetingResponse{
		ID:                        m.HexID(),
		Title:                     m.Title,
		Description:               m.Description,
		Language:                  m.Language,
		FileID:                    m.MediaObject(),
		Planned:                   m.Planned,
		PlannedDate:               m.PlannedDate,
		TranscribedText:           m.TranscribedText,
		DetectedLanguage:          m.DetectedLanguage,
		Summary:                   m.Summary,
		KeyPhrases:                m.KeyPhrases,
		FrequentExpressions:       m.FrequentExpressions,
		MostPositivePhrases:       m.MostPositivePhrases,
		MostNegativePhrases:       m.MostNegativePhrases,
		TranscriptionTranslations: m.TranscriptionTranslations,
		SummaryTranslations:       m.SummaryTranslations,
		IndexedAt:                 m.IndexedAt,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}

	if len(m.NamedEntities) > 0 {
		response.NamedEntities = make([]meeting.NamedEntityResponse, len(m.NamedEntities))
		for i, e := range m.NamedEntities {
			response.NamedEntities[i] = meeting.NamedEntityResponse{
				Text:      e.Text,
				StartChar: e.StartChar,
				EndChar:   e.EndChar,
				Label:     e.Label,
			}
		}
	}

	return response
}

// ToScheduleResponse converts a scheduled meeting to ScheduleResponse
func ToScheduleResponse(m *entities.Meeting) *meeting.ScheduleResponse {
	return &meeting.ScheduleResponse{
		MeetingID:   m.HexID(),
		Planned:     m.Planned,
		PlannedDate: m.PlannedDate,
	}
}

// ToRunResponses converts pipeline runs to RunResponse DTOs
func ToRunResponses(runs []entities.PipelineRun) []meeting.RunResponse {
	out := make([]meeting.RunResponse, len(runs))
	for i, r := range runs {
		stages := r.Metadata.Data().Stages
		timings := make([]meeting.StageTimingResponse, len(stages))
		for j, s := range stages {
			timings[j] = meeting.StageTimingResponse{
				Stage:      s.Stage,
				Attempts:   s.Attempts,
				DurationMs: s.DurationMs,
				Succeeded:  s.Succeeded,
			}
		}
		out[i] = meeting.RunResponse{
			ID:          r.ID.String(),
			Status:      string(r.Status),
			FailedStage: r.FailedStage,
			ErrorKind:   r.ErrorKind,
			LastError:   r.LastError,
			Attempts:    r.Attempts,
			Stages:      timings,
			StartedAt:   r.StartedAt,
			CompletedAt: r.CompletedAt,
			CreatedAt:   r.CreatedAt,
		}
	}
	return out
}

// ToSearchResponse converts search results to SearchResponse
func ToSearchResponse(query string, results []meetingUsecase.SearchResult) *meeting.SearchResponse {
	hits := make([]meeting.SearchHitResponse, len(results))
	for i, r := range results {
		hits[i] = meeting.SearchHitResponse{
			Score:   r.Score,
			Meeting: ToMeetingResponse(r.Meeting),
		}
	}
	return &meeting.SearchResponse{Query: query, Hits: hits}
}
