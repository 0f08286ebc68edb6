package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/jobs"
)

type JobHandler struct {
	Jobs *jobs.Service
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req jobs.JobInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	j, err := h.Jobs.Create(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Vaga publicada com sucesso", j)
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	page, err := h.Jobs.List(c.UserContext(), jobs.JobQuery{
		Category: c.Query("category"),
		Type:     models.JobType(c.Query("type")),
		Location: c.Query("location"),
		Search:   c.Query("search"),
		Status:   models.JobStatus(c.Query("status")),
		Page:     pageQuery(c),
	})
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	j, err := h.Jobs.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", j)
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req jobs.JobInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	j, err := h.Jobs.Update(c.UserContext(), u, id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Vaga atualizada com sucesso", j)
}

func (h *JobHandler) Delete(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Jobs.Delete(c.UserContext(), u, id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Vaga excluída com sucesso", nil)
}

type applyReq struct {
	CoverLetter string `json:"cover_letter"`
}

func (h *JobHandler) Apply(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req applyReq
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}

	a, err := h.Jobs.Apply(c.UserContext(), u, id, req.CoverLetter)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Candidatura enviada com sucesso", a)
}

func (h *JobHandler) MyApplications(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.Jobs.MyApplications(c.UserContext(), u.ID, pageQuery(c))
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *JobHandler) JobApplications(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	page, err := h.Jobs.JobApplications(c.UserContext(), u, id, pageQuery(c))
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *JobHandler) RespondApplication(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req jobs.RespondInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	a, err := h.Jobs.RespondApplication(c.UserContext(), u, id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Candidatura atualizada com sucesso", a)
}

func (h *JobHandler) Propose(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req jobs.ProposalInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.Jobs.Propose(c.UserContext(), u, id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Proposta enviada com sucesso", p)
}

func (h *JobHandler) MyProposals(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.Jobs.MyProposals(c.UserContext(), u, pageQuery(c))
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *JobHandler) RespondProposal(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req jobs.RespondInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.Jobs.RespondProposal(c.UserContext(), u, id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Proposta respondida com sucesso", p)
}
