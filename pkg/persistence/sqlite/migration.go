package sqlite

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE projects (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE nodes (
				project_id TEXT NOT NULL REFERENCES projects(id),
				id TEXT NOT NULL,
				label TEXT NOT NULL,
				type TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT '',
				priority INTEGER NOT NULL,
				progress INTEGER NOT NULL DEFAULT 0,
				parent_id TEXT,
				tags TEXT NOT NULL DEFAULT '[]',
				metadata TEXT NOT NULL DEFAULT '{}',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				PRIMARY KEY (project_id, id)
			);

			CREATE INDEX idx_nodes_type_status ON nodes(project_id, type, status);

			CREATE TABLE edges (
				project_id TEXT NOT NULL REFERENCES projects(id),
				id TEXT NOT NULL,
				source TEXT NOT NULL,
				target TEXT NOT NULL,
				type TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT '',
				metadata TEXT NOT NULL DEFAULT '{}',
				created_at TIMESTAMP NOT NULL,
				PRIMARY KEY (project_id, id),
				FOREIGN KEY (project_id, source) REFERENCES nodes(project_id, id),
				FOREIGN KEY (project_id, target) REFERENCES nodes(project_id, id)
			);

			CREATE INDEX idx_edges_source ON edges(project_id, source);
			CREATE INDEX idx_edges_target ON edges(project_id, target);

			CREATE TABLE milestones (
				project_id TEXT NOT NULL REFERENCES projects(id),
				id TEXT NOT NULL,
				title TEXT NOT NULL,
				date TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				linked_nodes TEXT NOT NULL DEFAULT '[]',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				PRIMARY KEY (project_id, id)
			);
		`,
		2: `
			CREATE TABLE action_history (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				project_id TEXT NOT NULL REFERENCES projects(id),
				node_id TEXT NOT NULL,
				action_id TEXT NOT NULL,
				status TEXT NOT NULL,
				result TEXT,
				error_message TEXT NOT NULL DEFAULT '',
				executed_at TIMESTAMP NOT NULL
			);

			CREATE INDEX idx_action_history_node ON action_history(project_id, node_id, executed_at);
		`,
	}
}
