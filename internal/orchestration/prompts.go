package orchestration

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Stage prompt builders. Each stage receives the previous stage's document
// serialized as indented JSON, matching the exchange format the models were
// tuned against.

func productManagerPrompt(tasks []string, additionalRequirements string) (system, user string) {
	var b strings.Builder
	b.WriteString("Analyze these requirements and create a Product Requirements Document (PRD).\n\n")
	b.WriteString("REQUIREMENTS:\n")
	for _, task := range tasks {
		fmt.Fprintf(&b, "- %s\n", task)
	}
	if additionalRequirements != "" {
		fmt.Fprintf(&b, "\nADDITIONAL CONTEXT: %s\n", additionalRequirements)
	}
	b.WriteString(`
Create a comprehensive PRD with:
1. Project Overview
2. Core Features
3. User Stories
4. Technical Requirements
5. Success Criteria

Respond in JSON format:
{
  "project_name": "...",
  "overview": "...",
  "core_features": ["feature1", "feature2"],
  "user_stories": ["story1", "story2"],
  "technical_requirements": ["req1", "req2"],
  "success_criteria": ["criteria1", "criteria2"]
}`)
	return "You are a Senior Product Manager.", b.String()
}

func architectPrompt(prd map[string]interface{}, language, framework string) (system, user string) {
	user = fmt.Sprintf(`Based on this PRD, design the system architecture.

PRD:
%s

TARGET: %s %s application

Design the architecture with:
1. System components
2. Database schema
3. API endpoints
4. File structure
5. Technology stack

Respond in JSON format:
{
  "components": ["component1", "component2"],
  "database_schema": {"table1": ["field1", "field2"]},
  "api_endpoints": ["/endpoint1", "/endpoint2"],
  "file_structure": ["file1.py", "file2.py"],
  "tech_stack": ["technology1", "technology2"]
}`, indentJSON(prd), language, framework)
	return "You are a Senior Software Architect.", user
}

func engineerPrompt(prd, architecture map[string]interface{}, language, framework string) (system, user string) {
	user = fmt.Sprintf(`Implement the system based on this PRD and architecture.

PRD:
%s

ARCHITECTURE:
%s

TARGET: %s %s

Generate complete, production-ready code for all files. Include:
- Main application files
- Models/schemas
- Database setup
- API routes
- Configuration files
- Requirements/dependencies
- Dockerfile
- README with setup instructions

Respond in JSON format:
{
  "files": {
    "filename1.py": "complete file content here",
    "filename2.py": "complete file content here",
    "requirements.txt": "dependencies here",
    "README.md": "setup instructions here"
  },
  "setup_instructions": "How to run the project"
}

Make sure all code is complete, functional, and follows best practices.`, indentJSON(prd), indentJSON(architecture), language, framework)
	return "You are a Senior Software Engineer.", user
}

func qaPrompt(prd, architecture map[string]interface{}) (system, user string) {
	user = fmt.Sprintf(`Create a test strategy for this system.

PRD:
%s

ARCHITECTURE:
%s

Cover:
1. Test levels (unit, integration, api, system)
2. Test types
3. Automation strategy
4. Quality gates

Respond in JSON format:
{
  "test_levels": {"unit_testing": "...", "integration_testing": "..."},
  "test_types": ["type1", "type2"],
  "automation_strategy": "...",
  "quality_gates": ["gate1", "gate2"]
}`, indentJSON(prd), indentJSON(architecture))
	return "You are a Senior QA Engineer.", user
}

func indentJSON(doc map[string]interface{}) string {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}
