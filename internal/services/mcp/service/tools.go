package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fableforge/fableforge/internal/services/mcp/domain"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResourceTemplate(*mcp.ResourceTemplate, mcp.ResourceHandler)
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResourceTemplate(resourceTemplate *mcp.ResourceTemplate, handler mcp.ResourceHandler) {
	r.server.AddResourceTemplate(resourceTemplate, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.CampaignCreateInput, domain.CampaignCreateResult](),
	newMCPToolRegistrar[domain.NPCCreateInput, domain.NPCCreateResult](),
	newMCPToolRegistrar[domain.NPCHealInput, domain.NPCHealResult](),
	newMCPToolRegistrar[domain.BestiaryEntryCreateInput, domain.BestiaryEntryCreateResult](),
	newMCPToolRegistrar[domain.CombatBeginInput, domain.CombatBeginResult](),
	newMCPToolRegistrar[domain.AttackInput, domain.AttackResult](),
	newMCPToolRegistrar[domain.CombatRemoveInput, domain.CombatRemoveResult](),
	newMCPToolRegistrar[domain.CombatStatusInput, domain.CombatStatusResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func registerGameTools(registrar mcpRegistrationTarget, svc domain.GameService) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.CampaignCreateTool(), handler: domain.CampaignCreateHandler(svc)},
		{tool: domain.NPCCreateTool(), handler: domain.NPCCreateHandler(svc)},
		{tool: domain.NPCHealTool(), handler: domain.NPCHealHandler(svc)},
		{tool: domain.BestiaryEntryCreateTool(), handler: domain.BestiaryEntryCreateHandler(svc)},
		{tool: domain.CombatBeginTool(), handler: domain.CombatBeginHandler(svc)},
		{tool: domain.AttackTool(), handler: domain.AttackHandler(svc)},
		{tool: domain.CombatRemoveParticipantTool(), handler: domain.CombatRemoveParticipantHandler(svc)},
		{tool: domain.CombatStatusGetTool(), handler: domain.CombatStatusGetHandler(svc)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerGameResources registers readable campaign MCP resources.
func registerGameResources(registrar mcpRegistrationTarget, svc domain.GameService) {
	registrar.AddResource(domain.CampaignListResource(), domain.CampaignListResourceHandler(svc))
	registrar.AddResourceTemplate(domain.CampaignResourceTemplate(), domain.CampaignResourceHandler(svc))
	registrar.AddResourceTemplate(domain.NPCListResourceTemplate(), domain.NPCListResourceHandler(svc))
	registrar.AddResourceTemplate(domain.BestiaryListResourceTemplate(), domain.BestiaryListResourceHandler(svc))
	registrar.AddResourceTemplate(domain.CombatResourceTemplate(), domain.CombatResourceHandler(svc))
}
