package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/circleats/donation-service/internal/api/dto"
	"github.com/circleats/donation-service/internal/service"
	apperrors "github.com/circleats/donation-service/pkg/util/errorutil"
)

// DonationsHandler exposes the donation registry endpoints for all three
// roles. Identity is carried in the path or body, matching the app clients.
type DonationsHandler struct {
	service *service.DonationService
}

// NewDonationsHandler constructs handler.
func NewDonationsHandler(donationService *service.DonationService) *DonationsHandler {
	return &DonationsHandler{service: donationService}
}

// Create POST /api/create_donation.
func (h *DonationsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	donation, err := h.service.CreateDonation(c.Context(), req.UserID, req.Item, req.Quantity, req.Location)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":  "Donation created",
		"donation": dto.NewDonationResponse(donation),
	})
}

// ListAll GET /api/donations.
func (h *DonationsHandler) ListAll(c *fiber.Ctx) error {
	donations, err := h.service.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDonationListResponse(donations))
}

// ListMine GET /api/my_donations/:user_id.
func (h *DonationsHandler) ListMine(c *fiber.Ctx) error {
	donations, err := h.service.ListByDonor(c.Context(), c.Params("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDonationListResponse(donations))
}

// MyNotifications GET /api/my_notifications/:user_id returns the notification
// logs across all donations owned by the donor.
func (h *DonationsHandler) MyNotifications(c *fiber.Ctx) error {
	notifications, err := h.service.NotificationsForDonor(c.Context(), c.Params("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNotificationListResponse(notifications))
}

// NotificationsFor GET /api/notifications/:email returns notifications
// addressed to the recipient.
func (h *DonationsHandler) NotificationsFor(c *fiber.Ctx) error {
	notifications, err := h.service.NotificationsForRecipient(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNotificationListResponse(notifications))
}

// ShelterRequest PUT /api/shelter_request/:donation_id.
func (h *DonationsHandler) ShelterRequest(c *fiber.Ctx) error {
	var req dto.ShelterRequestBody
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}
	if req.Shelter == "" {
		return apperrors.NewInvalidInput("shelter required")
	}

	donation, err := h.service.RequestDonation(c.Context(), c.Params("donation_id"), req.Shelter, req.Location, req.SelfPickup)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Request submitted",
		"donation": dto.NewDonationResponse(donation),
	})
}

// OpenRequests GET /api/shelter_requests lists requested donations that
// still need a volunteer.
func (h *DonationsHandler) OpenRequests(c *fiber.Ctx) error {
	donations, err := h.service.ListOpenRequests(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDonationListResponse(donations))
}

// MyRequests GET /api/my_requests/:email and /api/my_shelter_requests/:email.
func (h *DonationsHandler) MyRequests(c *fiber.Ctx) error {
	donations, err := h.service.ListByShelterRequester(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDonationListResponse(donations))
}

// AcceptDelivery PUT /api/accept_delivery/:donation_id and its
// schema-drift alias PUT /api/collect_donation/:donation_id.
func (h *DonationsHandler) AcceptDelivery(c *fiber.Ctx) error {
	var req dto.VolunteerBody
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}
	if req.Volunteer == "" {
		return apperrors.NewInvalidInput("volunteer required")
	}

	donation, err := h.service.AcceptDelivery(c.Context(), c.Params("donation_id"), req.Volunteer)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Delivery accepted",
		"donation": dto.NewDonationResponse(donation),
	})
}

// MyDeliveries GET /api/my_deliveries/:email.
func (h *DonationsHandler) MyDeliveries(c *fiber.Ctx) error {
	donations, err := h.service.ListByVolunteer(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDonationListResponse(donations))
}

// ShelterAccept PUT /api/shelter_accept/:donation_id completes a donation
// directly between shelter and donor.
func (h *DonationsHandler) ShelterAccept(c *fiber.Ctx) error {
	var req dto.ShelterBody
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	donation, err := h.service.ShelterAccept(c.Context(), c.Params("donation_id"), req.Shelter, req.Location)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Donation accepted",
		"donation": dto.NewDonationResponse(donation),
	})
}

// DonateToShelter PUT /api/donate_to_shelter/:donation_id finishes a
// volunteer-mediated delivery.
func (h *DonationsHandler) DonateToShelter(c *fiber.Ctx) error {
	var req dto.ShelterBody
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}
	if req.Shelter == "" {
		return apperrors.NewInvalidInput("shelter required")
	}

	donation, err := h.service.DonateToShelter(c.Context(), c.Params("donation_id"), req.Shelter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Donation delivered",
		"donation": dto.NewDonationResponse(donation),
	})
}
