package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/yogabrata/formation/logger"
	"github.com/yogabrata/formation/model"
	"github.com/yogabrata/formation/store"
	"go.uber.org/zap"
)

func (s *Server) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var companyInfo model.CompanyInfo
	if err := json.NewDecoder(r.Body).Decode(&companyInfo); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	snapshot, err := s.workflowService.CreateWorkflow(companyInfo)
	if err != nil {
		logger.Error("error creating workflow", zap.String("company", companyInfo.Name), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, snapshot)
}

func (s *Server) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowId := mux.Vars(r)["id"]
	snapshot, err := s.workflowService.GetWorkflowSnapshot(workflowId)
	if err != nil {
		respondNotFoundOrError(w, err)
		return
	}
	respondOK(w, snapshot)
}

func (s *Server) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.workflowService.ListWorkflows())
}

func (s *Server) HandleWorkflowVisualization(w http.ResponseWriter, r *http.Request) {
	workflowId := mux.Vars(r)["id"]
	diagram, err := s.workflowService.RenderWorkflow(workflowId)
	if err != nil {
		respondNotFoundOrError(w, err)
		return
	}
	respondOK(w, map[string]string{"format": "mermaid", "diagram": diagram})
}

func (s *Server) HandleTemplateVisualization(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	diagram, err := s.workflowService.RenderTemplate(name)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondOK(w, map[string]string{"format": "mermaid", "diagram": diagram})
}

func (s *Server) HandleCancelWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowId := mux.Vars(r)["id"]
	if err := s.workflowService.CancelWorkflow(workflowId); err != nil {
		respondNotFoundOrError(w, err)
		return
	}
	respondOK(w, map[string]string{"message": "cancellation requested"})
}

func (s *Server) HandleSourceStatus(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.workflowService.SourceStatus())
}

func respondNotFoundOrError(w http.ResponseWriter, err error) {
	var notFound store.NotFoundError
	if errors.As(err, &notFound) {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithError(w, http.StatusInternalServerError, err.Error())
}
