package server

import (
	"fmt"
	"slices"
	"strings"

	"familyhub/pkg/types"
)

type entity string

const (
	entityContributions entity = "contributions"
	entityEvents        entity = "events"
	entitySessions      entity = "sessions"
	entityDocuments     entity = "documents"
	entityFamilyTree    entity = "family_tree"
	entityMembers       entity = "members"
	entityAuditLogs     entity = "audit_logs"
)

// Policy holds the roles allowed to mutate each entity family.
type Policy map[entity][]types.Role

func NewPolicy(config *types.Config) (Policy, error) {
	sources := map[entity][]string{
		entityContributions: config.ContributionRoles,
		entityEvents:        config.EventRoles,
		entitySessions:      config.SessionRoles,
		entityDocuments:     config.DocumentRoles,
		entityFamilyTree:    config.FamilyTreeRoles,
		entityMembers:       config.MemberRoles,
		entityAuditLogs:     config.AuditRoles,
	}

	policy := make(Policy, len(sources))
	for e, names := range sources {
		for _, name := range names {
			role := types.Role(strings.ToLower(strings.TrimSpace(name)))
			switch role {
			case "":
				continue
			case types.RoleAdmin, types.RoleTreasurer, types.RoleSecretary, types.RoleMember:
			default:
				return nil, fmt.Errorf("unknown role %q configured for %s", name, e)
			}
			if !slices.Contains(policy[e], role) {
				policy[e] = append(policy[e], role)
			}
		}
	}

	return policy, nil
}

// Authorize returns ErrForbidden unless actor holds one of the roles allowed for e.
func (p Policy) Authorize(actor *types.Actor, e entity) error {
	if actor == nil {
		return types.ErrUnauthenticated
	}
	if !actor.HasRole(p[e]...) {
		return types.ErrForbidden
	}
	return nil
}
