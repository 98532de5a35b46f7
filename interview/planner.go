package interview

import (
	"context"
)

// fallbackTopics is the neutral plan used whenever the model cannot produce
// one. Eight topics, resume first, role-agnostic by construction.
func fallbackTopics() []Topic {
	return []Topic{
		{Name: "Resume Discussion", Description: "Обсуждение опыта и проектов из резюме"},
		{Name: "Problem Solving", Description: "Подходы к решению задач и анализу требований"},
		{Name: "Tools and Practices", Description: "Инструменты, процессы и практики качества"},
		{Name: "Data Handling", Description: "Работа с данными, форматами и проверками"},
		{Name: "Collaboration", Description: "Взаимодействие, коммуникация, договоренности"},
		{Name: "Reliability & Testing", Description: "Надежность, тестирование и контроль изменений"},
		{Name: "Delivery", Description: "Планирование, сроки, итерации и выпуск"},
		{Name: "Learning & Growth", Description: "Самообучение, обратная связь и развитие"},
	}
}

// Plan builds the interview plan from the resume and the job description.
// Any model or parse failure yields the fixed fallback plan; either way every
// topic is stamped with the per-topic quota and the plan with the global
// budget.
func (e *Engine) Plan(ctx context.Context, state State) (State, error) {
	e.logger.Debug("agent: planner")

	plan, err := e.generatePlan(ctx, state)
	if err != nil {
		e.logger.Warn("planner: using neutral fallback plan: %v", err)
		plan = &Plan{Topics: fallbackTopics(), InterviewStyle: "conversational"}
	}

	for i := range plan.Topics {
		plan.Topics[i].MaxQuestions = e.cfg.MaxQuestionsPerTopic
	}
	plan.MaxTotalQuestions = e.cfg.MaxTotalQuestions

	e.logger.Info("planner: plan created with %d topics", len(plan.Topics))
	state.Plan = plan
	return state, nil
}

func (e *Engine) generatePlan(ctx context.Context, state State) (*Plan, error) {
	prompt, err := formatPrompt(planningPrompt, map[string]any{
		"alignment":       e.cfg.Alignment,
		"role":            truncate(state.Role, 100),
		"resume":          truncate(state.Resume, 400),
		"job_description": truncate(state.JobDescription, 400),
	})
	if err != nil {
		return nil, err
	}

	text, err := e.inv.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := parseLLMJSON(text, &plan); err != nil {
		return nil, err
	}
	if len(plan.Topics) == 0 {
		return nil, errPlanWithoutTopics
	}
	return &plan, nil
}
