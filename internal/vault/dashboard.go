package vault

import (
	"log/slog"
	"os"
	"path/filepath"
)

// ensureDashboards generates the Obsidian .base view files and Dashboard.md
// once; existing files are left untouched so user edits survive restarts.
func (v *Vault) ensureDashboards() error {
	artifacts := map[string]string{
		filepath.Join(CategoryProjects, "Projects.base"):   projectsBase,
		filepath.Join(CategoryActions, "Actions.base"):     actionsBase,
		filepath.Join(CategoryMedia, "Media.base"):         mediaBase,
		filepath.Join(CategoryReference, "Reference.base"): referenceBase,
		"Dashboard.base": dashboardBase,
		"Dashboard.md":   dashboardMD,
	}
	for rel, content := range artifacts {
		abs := filepath.Join(v.store.Root(), rel)
		if _, err := os.Stat(abs); err == nil {
			continue
		}
		if err := v.store.Write(rel, []byte(content)); err != nil {
			return err
		}
		v.logger.Info("created vault file", slog.String("path", rel))
	}
	return nil
}

const projectsBase = `filters:
  and:
    - 'file.inFolder("Projects")'
    - 'file.ext == "md"'
properties:
  project_name:
    displayName: Project
  priority:
    displayName: Priority
  date:
    displayName: Date
  tags:
    displayName: Tags
views:
  - type: table
    name: All Projects
    order:
      - note.priority
      - note.date
      - note.project_name
      - note.tags
`

const actionsBase = `filters:
  and:
    - 'file.inFolder("Actions")'
    - 'file.ext == "md"'
properties:
  action_item:
    displayName: Action
  status:
    displayName: Status
  due_date:
    displayName: Due Date
  priority:
    displayName: Priority
  project:
    displayName: Project
views:
  - type: table
    name: Open Actions
    filters:
      and:
        - 'status != "done"'
        - 'status != "completed"'
    order:
      - note.due_date
      - note.priority
      - note.action_item
      - note.status
      - note.project
  - type: table
    name: All Actions
    order:
      - note.due_date
      - note.priority
      - note.action_item
      - note.status
      - note.project
`

const mediaBase = `filters:
  and:
    - 'file.inFolder("Media")'
    - 'file.ext == "md"'
properties:
  media_type:
    displayName: Type
  creator:
    displayName: Creator
  status:
    displayName: Status
  url:
    displayName: URL
views:
  - type: table
    name: All Media
    groupBy:
      property: note.media_type
      direction: ASC
    order:
      - note.media_type
      - note.creator
      - note.status
      - note.url
  - type: table
    name: To Consume
    filters:
      and:
        - 'status == "to_consume"'
    order:
      - note.media_type
      - note.creator
`

const referenceBase = `filters:
  and:
    - 'file.inFolder("Reference")'
    - 'file.ext == "md"'
properties:
  topic:
    displayName: Topic
  tags:
    displayName: Tags
  date:
    displayName: Date
views:
  - type: table
    name: All Reference
    order:
      - note.topic
      - note.tags
      - note.date
`

const dashboardBase = `filters:
  and:
    - 'file.ext == "md"'
properties:
  category:
    displayName: Category
  status:
    displayName: Status
  due_date:
    displayName: Due Date
  priority:
    displayName: Priority
  date:
    displayName: Date
views:
  - type: table
    name: "Today's Actions"
    filters:
      and:
        - 'file.inFolder("Actions")'
        - 'status != "done"'
        - 'status != "completed"'
    order:
      - note.priority
      - note.due_date
      - note.status
  - type: table
    name: Recent Captures
    filters:
      and:
        - 'file.mtime > now() - "7 days"'
    order:
      - file.mtime
      - note.category
  - type: table
    name: All Open Actions
    filters:
      and:
        - 'file.inFolder("Actions")'
        - 'status != "done"'
        - 'status != "completed"'
    order:
      - note.due_date
      - note.priority
`

const dashboardMD = `---
title: Dashboard
tags:
  - dashboard
  - index
---

# Dashboard

![[Dashboard.base]]

> [!abstract]- Projects
> ![[Projects/Projects.base]]

> [!abstract]- Actions
> ![[Actions/Actions.base]]

> [!abstract]- Media
> ![[Media/Media.base]]

> [!abstract]- Reference
> ![[Reference/Reference.base]]
`
