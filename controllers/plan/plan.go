package planController

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"studytrack/logger"
	"studytrack/middleware"
	"studytrack/services"
	"studytrack/utils"
	planValidator "studytrack/validators/plan"
)

type Controller struct {
	plans  *services.PlanService
	mailer utils.Mailer
	log    *logger.Logger
}

func New(plans *services.PlanService, mailer utils.Mailer, log *logger.Logger) *Controller {
	return &Controller{plans: plans, mailer: mailer, log: log}
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	plans, err := ctl.plans.GetPlansForOwner(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Study plans fetched successfully.", plans)
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}
	reqData, ok := c.Locals("validatedPlan").(*services.CreatePlanInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	plan, err := ctl.plans.CreatePlan(c.UserContext(), userID, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if user, ok := middleware.CurrentUser(c); ok {
		go func(email, name string, plan services.PlanView) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := utils.SendPlanCreatedEmail(ctx, ctl.mailer, email, name, plan.Name, plan.EndDate, plan.DailyAllocation); err != nil {
				ctl.log.Warn("plan created email failed", "planId", plan.ID, "error", err)
			}
		}(user.Email, user.Name, *plan)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Study plan created successfully.", plan)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	userID, planID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid plan id!", nil)
	}

	plan, err := ctl.plans.GetPlan(c.UserContext(), userID, planID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Study plan fetched successfully.", plan)
}

func (ctl *Controller) Update(c *fiber.Ctx) error {
	userID, planID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid plan id!", nil)
	}
	patch, ok := c.Locals("validatedPlanPatch").(*services.PlanPatch)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	plan, err := ctl.plans.UpdatePlan(c.UserContext(), userID, planID, *patch)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Study plan updated successfully.", plan)
}

func (ctl *Controller) CompleteDay(c *fiber.Ctx) error {
	userID, planID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid plan id!", nil)
	}
	reqData, ok := c.Locals("validatedDay").(*planValidator.MarkDayRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	plan, err := ctl.plans.MarkDayCompleted(c.UserContext(), userID, planID, reqData.Date, reqData.UnitsCompleted)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Day marked completed.", plan)
}

func (ctl *Controller) MissDay(c *fiber.Ctx) error {
	userID, planID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid plan id!", nil)
	}
	reqData, ok := c.Locals("validatedDay").(*planValidator.MarkDayRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	plan, err := ctl.plans.MarkDayMissed(c.UserContext(), userID, planID, reqData.Date, reqData.Reason)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Day marked missed.", plan)
}

func (ctl *Controller) Recalculate(c *fiber.Ctx) error {
	userID, planID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid plan id!", nil)
	}

	plan, err := ctl.plans.Recalculate(c.UserContext(), userID, planID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Daily allocation recalculated.", plan)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	userID, planID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid plan id!", nil)
	}

	if err := ctl.plans.DeletePlan(c.UserContext(), userID, planID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Study plan deleted successfully.", nil)
}

func ids(c *fiber.Ctx) (userID, planID uint, ok bool) {
	userID, ok = middleware.UserID(c)
	if !ok {
		return 0, 0, false
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, 0, false
	}
	return userID, uint(id), true
}
