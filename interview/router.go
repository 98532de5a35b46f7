package interview

// Graph node names.
const (
	NodePlanner      = "planner"
	NodeSelector     = "selector"
	NodeConversation = "conversation_manager"
	NodeEvaluator    = "evaluator"
	NodeController   = "controller"
	NodeReporter     = "reporter"
)

// Route maps the controller's output and the global limits to the next
// stage. Pure function of the state.
//
// Order matters: termination conditions are checked before the controller's
// decision, and a hard ceiling on total questions guards against any routing
// cycle the limits fail to catch.
func (e *Engine) Route(state State) string {
	maxTotal := e.cfg.MaxTotalQuestions
	totalTopics := 0
	if state.Plan != nil {
		maxTotal = state.Plan.MaxTotalQuestions
		totalTopics = len(state.Plan.Topics)
	}

	switch {
	case state.QuestionsAsked >= maxTotal:
		e.logger.Info("router: question budget spent (%d/%d)", state.QuestionsAsked, maxTotal)
		return NodeReporter
	case state.TopicIndex >= totalTopics:
		e.logger.Info("router: all topics completed (%d/%d)", state.TopicIndex, totalTopics)
		return NodeReporter
	case state.QuestionsAsked >= e.cfg.HardQuestionCeiling:
		e.logger.Error("router: hard question ceiling hit (%d), forcing report", state.QuestionsAsked)
		return NodeReporter
	case state.ControllerDecision == DecisionContinueTopic && state.GeneratedQuestion != nil:
		return NodeConversation
	case state.ControllerDecision == DecisionSkipTopic || state.SkipTopic:
		return NodeSelector
	default:
		return NodeSelector
	}
}
