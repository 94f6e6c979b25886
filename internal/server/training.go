package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	trainingdomain "github.com/smallbiznis/haccp/internal/training/domain"
)

func (s *Server) ListTrainings(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	trainings, err := s.trainingSvc.List(c.Request.Context(), trainingdomain.ListRequest{
		From:  from,
		To:    to,
		Topic: strings.TrimSpace(c.Query("topic")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": trainings})
}

func (s *Server) GetTraining(c *gin.Context) {
	training, err := s.trainingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": training})
}

func (s *Server) CreateTraining(c *gin.Context) {
	var req trainingdomain.TrainingRequest
	if !bindJSON(c, &req) {
		return
	}

	training, err := s.trainingSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "training.create", "training", training.ID.String(), map[string]any{
		"title":        training.Title,
		"participants": len(req.Participants),
	})
	c.JSON(http.StatusCreated, gin.H{"data": training})
}

func (s *Server) UpdateTraining(c *gin.Context) {
	var req trainingdomain.TrainingRequest
	if !bindJSON(c, &req) {
		return
	}

	training, err := s.trainingSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "training.update", "training", training.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": training})
}

func (s *Server) DeleteTraining(c *gin.Context) {
	id := c.Param("id")
	if err := s.trainingSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "training.delete", "training", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) AddTrainingParticipant(c *gin.Context) {
	var req trainingdomain.ParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	trainingID := c.Param("id")
	participant, err := s.trainingSvc.AddParticipant(c.Request.Context(), trainingID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "training.participant_add", "training", trainingID, map[string]any{
		"participant_id": participant.ID.String(),
		"name":           participant.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": participant})
}

func (s *Server) UpdateTrainingParticipant(c *gin.Context) {
	var req trainingdomain.ParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	trainingID := c.Param("id")
	participant, err := s.trainingSvc.UpdateParticipant(c.Request.Context(), trainingID, c.Param("participantId"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "training.participant_update", "training", trainingID, map[string]any{
		"participant_id": participant.ID.String(),
	})
	c.JSON(http.StatusOK, gin.H{"data": participant})
}

func (s *Server) RemoveTrainingParticipant(c *gin.Context) {
	trainingID := c.Param("id")
	participantID := c.Param("participantId")
	if err := s.trainingSvc.RemoveParticipant(c.Request.Context(), trainingID, participantID); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "training.participant_remove", "training", trainingID, map[string]any{
		"participant_id": participantID,
	})
	c.Status(http.StatusNoContent)
}
