package kb

// Stats summarizes table sizes.
type Stats struct {
	HardSkills int `json:"hard_skills" yaml:"hard_skills"`
	SoftSkills int `json:"soft_skills" yaml:"soft_skills"`
	Variations int `json:"variations" yaml:"variations"`
	Rules      int `json:"rules" yaml:"rules"`
	Clusters   int `json:"clusters" yaml:"clusters"`
	Archetypes int `json:"archetypes" yaml:"archetypes"`
	// MaxInferenceDepth is the largest shortest-path distance reachable
	// through the rules from any single skill. Forward expansion is
	// idempotent when its depth bound is at least this value.
	MaxInferenceDepth int `json:"max_inference_depth" yaml:"max_inference_depth"`
}

// Stats computes table sizes and the inference reach of the rule graph.
func (k *KnowledgeBase) Stats() Stats {
	edges := 0
	for _, targets := range k.rules {
		edges += len(targets)
	}

	return Stats{
		HardSkills:        len(k.hard),
		SoftSkills:        len(k.soft),
		Variations:        len(k.hardVariations) + len(k.softVariations),
		Rules:             edges,
		Clusters:          len(k.clusters),
		Archetypes:        len(k.archetypes),
		MaxInferenceDepth: k.maxInferenceDepth(),
	}
}

func (k *KnowledgeBase) maxInferenceDepth() int {
	deepest := 0
	for source := range k.rules {
		if d := k.eccentricity(source); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// eccentricity is the BFS level of the farthest skill reachable from start.
func (k *KnowledgeBase) eccentricity(start string) int {
	visited := map[string]struct{}{start: {}}
	frontier := []string{start}
	level := 0

	for len(frontier) > 0 {
		var next []string
		for _, s := range frontier {
			for _, t := range k.rules[s] {
				if _, seen := visited[t]; seen {
					continue
				}
				visited[t] = struct{}{}
				next = append(next, t)
			}
		}
		if len(next) == 0 {
			break
		}
		level++
		frontier = next
	}

	return level
}
