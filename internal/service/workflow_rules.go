package service

import (
	"fmt"

	"cajachica/internal/model"

	"github.com/google/uuid"
)

type reasonField int

const (
	reasonNone reasonField = iota
	reasonObservation
	reasonRebuttal
	reasonFinalRejection
)

func (f reasonField) jsonName() string {
	switch f {
	case reasonObservation:
		return "observation_reason"
	case reasonRebuttal:
		return "rebuttal_reason"
	case reasonFinalRejection:
		return "final_rejection_reason"
	default:
		return ""
	}
}

func (f reasonField) value(in TransitionInput) string {
	switch f {
	case reasonObservation:
		return in.ObservationReason
	case reasonRebuttal:
		return in.RebuttalReason
	case reasonFinalRejection:
		return in.FinalRejectionReason
	default:
		return ""
	}
}

type transitionContext struct {
	actor         Actor
	req           *model.FundRequest
	requesterRole model.RoleName
	reason        string
}

type transitionOutcome struct {
	liveState  model.RequestState
	notes      string
	message    string
	fundAction bool
	// fundMessage replaces message once a fund was created or mutated
	fundMessage func(fundCode string) string
}

// transitionRule describes one requested target. Authorization is membership
// of the actor's tier in tiers, or being the requester when requesterMayAct.
type transitionRule struct {
	milestone       model.RequestState
	tiers           []model.Tier
	requesterMayAct bool
	from            []model.RequestState
	selfBan         bool
	reason          reasonField
	deniedMsg       string
	selfBanMsg      string
	invalidMsg      string
	apply           func(tc *transitionContext) transitionOutcome
}

func (r *transitionRule) admits(actor Actor, req *model.FundRequest) bool {
	if r.requesterMayAct && actor.ID == req.RequesterID {
		return true
	}
	tier := actor.Tier()
	for _, t := range r.tiers {
		if t == tier {
			return true
		}
	}
	return false
}

func (r *transitionRule) allowedFrom(state model.RequestState) bool {
	for _, s := range r.from {
		if s == state {
			return true
		}
	}
	return false
}

// selfDealing reports whether the actor is reviewing their own Decrease or
// Closure request. Any reviewer role counts, so a general manager who filed a
// reduction needs a second reviewer at their own tier.
func selfDealing(actor Actor, req *model.FundRequest) bool {
	return actor.ID == req.RequesterID && req.RequestType.ReducesFund()
}

var (
	adminTiers    = []model.Tier{model.TierAdmin, model.TierSuperAdmin}
	managerTiers  = []model.Tier{model.TierManager, model.TierSuperAdmin}
	reviewerTiers = []model.Tier{model.TierAdmin, model.TierManager, model.TierSuperAdmin}
	superOnly     = []model.Tier{model.TierSuperAdmin}

	adminReviewStates   = []model.RequestState{model.StatePendingAdminApproval, model.StateRebuttalSubmittedToAdmin}
	managerReviewStates = []model.RequestState{model.StatePendingManagerApproval, model.StateRebuttalSubmittedToManager}
	nonTerminalStates   = []model.RequestState{
		model.StatePendingAdminApproval,
		model.StateObservedByAdmin,
		model.StateRebuttalSubmittedToAdmin,
		model.StateApprovedByAdmin,
		model.StatePendingManagerApproval,
		model.StateObservedByManager,
		model.StateRebuttalSubmittedToManager,
	}
)

func setRef(ref **uuid.UUID, id uuid.UUID) {
	v := id
	*ref = &v
}

func setText(ref **string, text string) {
	v := text
	*ref = &v
}

func clearReviewTexts(req *model.FundRequest) {
	req.ObservationReason = nil
	req.RebuttalReason = nil
}

func fundApprovalMessage(req *model.FundRequest, code string) string {
	switch req.RequestType {
	case model.RequestOpening:
		return "¡Éxito! Solicitud de Apertura aprobada. Fondo asignado: " + code
	case model.RequestClosure:
		return fmt.Sprintf("¡Éxito! Solicitud de Cierre aprobada. El fondo %s ha sido cerrado.", code)
	default:
		return fmt.Sprintf("¡Éxito! Solicitud de %s aprobada. El fondo %s ha sido actualizado.", req.RequestType, code)
	}
}

// transitionRules is consulted once per transition, keyed by requested milestone
var transitionRules = map[model.RequestState]*transitionRule{
	model.StateObservedByAdmin: {
		milestone:  model.StateObservedByAdmin,
		tiers:      adminTiers,
		from:       adminReviewStates,
		selfBan:    true,
		reason:     reasonObservation,
		deniedMsg:  "Acceso denegado. Solo el Jefe de Administración puede observar solicitudes.",
		selfBanMsg: "Acceso denegado. No puede observar su propia solicitud de disminución o cierre; solo Gerencia General puede hacerlo.",
		invalidMsg: "La solicitud no está pendiente de revisión por Administración.",
		apply: func(tc *transitionContext) transitionOutcome {
			setText(&tc.req.ObservationReason, tc.reason)
			setRef(&tc.req.AdminReviewerID, tc.actor.ID)
			return transitionOutcome{
				liveState: model.StateObservedByAdmin,
				notes:     "Solicitud observada por Administración: " + tc.reason,
				message:   "Observación enviada exitosamente por Administración.",
			}
		},
	},
	model.StateApprovedByAdmin: {
		milestone:  model.StateApprovedByAdmin,
		tiers:      adminTiers,
		from:       adminReviewStates,
		selfBan:    true,
		deniedMsg:  "Acceso denegado. Solo el Jefe de Administración puede aprobar solicitudes en esta etapa.",
		selfBanMsg: "Acceso denegado. No puede aprobar su propia solicitud de disminución o cierre; solo Gerencia General puede hacerlo.",
		invalidMsg: "La solicitud no está pendiente de revisión por Administración.",
		apply: func(tc *transitionContext) transitionOutcome {
			req := tc.req
			setRef(&req.AdminReviewerID, tc.actor.ID)
			clearReviewTexts(req)

			// administration is the final approver for area-tier decreases and closures
			if req.RequestType.ReducesFund() && tc.requesterRole.Tier() == model.TierArea {
				setRef(&req.ManagerApproverID, tc.actor.ID)
				return transitionOutcome{
					liveState:  model.StateApproved,
					notes:      fmt.Sprintf("Solicitud de %s aprobada finalmente por Administración.", req.RequestType),
					message:    "Solicitud aprobada por Administración exitosamente.",
					fundAction: true,
					fundMessage: func(code string) string {
						verb := "actualizado."
						if req.RequestType == model.RequestClosure {
							verb = "cerrado."
						}
						return fmt.Sprintf("¡Éxito! Solicitud de %s aprobada por Administración. El fondo %s ha sido %s", req.RequestType, code, verb)
					},
				}
			}
			return transitionOutcome{
				liveState: model.StatePendingManagerApproval,
				notes:     "Solicitud aprobada por Administración. Pasa a pendiente de aprobación de Gerencia General.",
				message:   "Solicitud aprobada por Administración. Enviada a Gerencia General.",
			}
		},
	},
	model.StateRebuttalSubmittedToAdmin: {
		milestone:       model.StateRebuttalSubmittedToAdmin,
		tiers:           superOnly,
		requesterMayAct: true,
		from:            []model.RequestState{model.StateObservedByAdmin},
		reason:          reasonRebuttal,
		deniedMsg:       "Acceso denegado. Solo el solicitante puede enviar un descargo.",
		invalidMsg:      "La solicitud no está observada por Administración.",
		apply: func(tc *transitionContext) transitionOutcome {
			setText(&tc.req.RebuttalReason, tc.reason)
			return transitionOutcome{
				liveState: model.StatePendingAdminApproval,
				notes:     "Descargo enviado por el solicitante: " + tc.reason + ". La solicitud vuelve a ser revisada por Administración.",
				message:   "Descargo enviado exitosamente a Administración.",
			}
		},
	},
	model.StateObservedByManager: {
		milestone:  model.StateObservedByManager,
		tiers:      managerTiers,
		from:       managerReviewStates,
		reason:     reasonObservation,
		deniedMsg:  "Acceso denegado. Solo el Gerente General puede observar solicitudes en esta etapa.",
		invalidMsg: "La solicitud no está pendiente de aprobación por Gerencia General.",
		apply: func(tc *transitionContext) transitionOutcome {
			setText(&tc.req.ObservationReason, tc.reason)
			setRef(&tc.req.ManagerApproverID, tc.actor.ID)
			return transitionOutcome{
				liveState: model.StateObservedByManager,
				notes:     "Solicitud observada por Gerencia General: " + tc.reason + ". Se espera el descargo del solicitante.",
				message:   "Observación enviada exitosamente por Gerencia General.",
			}
		},
	},
	model.StateApproved: {
		milestone:  model.StateApproved,
		tiers:      managerTiers,
		from:       managerReviewStates,
		selfBan:    true,
		deniedMsg:  "Acceso denegado. Solo el Gerente General puede aprobar solicitudes.",
		selfBanMsg: "Acceso denegado. No puede aprobar su propia solicitud de disminución o cierre; debe hacerlo otro aprobador de Gerencia General.",
		invalidMsg: "La solicitud no está pendiente de aprobación por Gerencia General.",
		apply: func(tc *transitionContext) transitionOutcome {
			req := tc.req
			setRef(&req.ManagerApproverID, tc.actor.ID)
			clearReviewTexts(req)
			return transitionOutcome{
				liveState:   model.StateApproved,
				notes:       "Solicitud aprobada finalmente por Gerencia General. Proceso completado.",
				message:     "Solicitud aprobada por Gerencia General exitosamente.",
				fundAction:  true,
				fundMessage: func(code string) string { return fundApprovalMessage(req, code) },
			}
		},
	},
	model.StateRebuttalSubmittedToManager: {
		milestone:       model.StateRebuttalSubmittedToManager,
		tiers:           superOnly,
		requesterMayAct: true,
		from:            []model.RequestState{model.StateObservedByManager},
		reason:          reasonRebuttal,
		deniedMsg:       "Acceso denegado. Solo el solicitante puede enviar un descargo.",
		invalidMsg:      "La solicitud no está observada por Gerencia General.",
		apply: func(tc *transitionContext) transitionOutcome {
			setText(&tc.req.RebuttalReason, tc.reason)
			return transitionOutcome{
				liveState: model.StatePendingManagerApproval,
				notes:     "Descargo enviado por el solicitante: " + tc.reason + ". La solicitud vuelve a ser revisada por Gerencia General.",
				message:   "Descargo enviado exitosamente a Gerencia General.",
			}
		},
	},
	model.StateFinalRejected: {
		milestone:  model.StateFinalRejected,
		tiers:      reviewerTiers,
		from:       nonTerminalStates,
		selfBan:    true,
		reason:     reasonFinalRejection,
		deniedMsg:  "Acceso denegado. Solo el Jefe de Administración o el Gerente General pueden rechazar solicitudes.",
		selfBanMsg: "Acceso denegado. No puede rechazar su propia solicitud de disminución o cierre; debe hacerlo otro revisor.",
		invalidMsg: "La solicitud ya se encuentra en un estado final.",
		apply: func(tc *transitionContext) transitionOutcome {
			req := tc.req
			setText(&req.FinalRejectionReason, tc.reason)
			switch tc.actor.Tier() {
			case model.TierAdmin:
				setRef(&req.AdminReviewerID, tc.actor.ID)
			case model.TierManager:
				setRef(&req.ManagerApproverID, tc.actor.ID)
			case model.TierSuperAdmin:
				// record the super admin at the tier the request was waiting on
				if req.State.IsManagerTier() {
					setRef(&req.ManagerApproverID, tc.actor.ID)
				} else {
					setRef(&req.AdminReviewerID, tc.actor.ID)
				}
			}
			return transitionOutcome{
				liveState: model.StateFinalRejected,
				notes:     "Solicitud rechazada finalmente: " + tc.reason,
				message:   "Solicitud rechazada definitivamente.",
			}
		},
	},
}
