package memory

import "kanbancore/pkg/domain"

// allocate returns the next unused id for the entity type. Counters only ever
// grow, so ids freed by deletes are never handed out again.
func (s *memoryState) allocate(entity domain.EntityType) string {
	for {
		s.counters[entity]++
		id := entity.FormatID(s.counters[entity])
		if !s.idInUse(entity, id) {
			return id
		}
	}
}

func (s *memoryState) idInUse(entity domain.EntityType, id string) bool {
	switch entity {
	case domain.EntityWorkspace:
		return s.workspaces.has(id)
	case domain.EntityProject:
		return s.projects.has(id)
	case domain.EntityEpic:
		return s.epics.has(id)
	case domain.EntityEpicItem:
		return s.epicItems.has(id)
	case domain.EntitySprint:
		return s.sprints.has(id)
	case domain.EntityTask:
		return s.tasks.has(id)
	case domain.EntityTag:
		return s.tags.has(id)
	case domain.EntityUser:
		return s.users.has(id)
	case domain.EntityTeam:
		return s.teams.has(id)
	case domain.EntityComment:
		found := false
		s.tasks.each(func(_ string, t Task) bool {
			for _, c := range t.Comments {
				if c.ID == id {
					found = true
					return false
				}
			}
			return true
		})
		return found
	}
	return false
}

// syncCounters raises every counter to at least the highest numeric suffix in
// use, so imported or seeded ids are never reissued.
func (s *memoryState) syncCounters() {
	raise := func(entity domain.EntityType, ids []string) {
		for _, id := range ids {
			if n, ok := entity.ParseID(id); ok && n > s.counters[entity] {
				s.counters[entity] = n
			}
		}
	}
	raise(domain.EntityWorkspace, s.workspaces.order)
	raise(domain.EntityProject, s.projects.order)
	raise(domain.EntityEpic, s.epics.order)
	raise(domain.EntityEpicItem, s.epicItems.order)
	raise(domain.EntitySprint, s.sprints.order)
	raise(domain.EntityTask, s.tasks.order)
	raise(domain.EntityTag, s.tags.order)
	raise(domain.EntityUser, s.users.order)
	raise(domain.EntityTeam, s.teams.order)
	var comments []string
	s.tasks.each(func(_ string, t Task) bool {
		for _, c := range t.Comments {
			comments = append(comments, c.ID)
		}
		return true
	})
	raise(domain.EntityComment, comments)
}
