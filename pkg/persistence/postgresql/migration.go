package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE projects (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE nodes (
				project_id VARCHAR(255) NOT NULL REFERENCES projects(id),
				id VARCHAR(255) NOT NULL,
				label TEXT NOT NULL,
				type VARCHAR(50) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT '',
				priority INTEGER NOT NULL,
				progress INTEGER NOT NULL DEFAULT 0,
				parent_id VARCHAR(255),
				tags JSONB NOT NULL DEFAULT '[]',
				metadata JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (project_id, id)
			);

			CREATE INDEX idx_nodes_type_status ON nodes(project_id, type, status);

			CREATE TABLE edges (
				project_id VARCHAR(255) NOT NULL REFERENCES projects(id),
				id VARCHAR(255) NOT NULL,
				source VARCHAR(255) NOT NULL,
				target VARCHAR(255) NOT NULL,
				type VARCHAR(50) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT '',
				metadata JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (project_id, id),
				FOREIGN KEY (project_id, source) REFERENCES nodes(project_id, id),
				FOREIGN KEY (project_id, target) REFERENCES nodes(project_id, id)
			);

			CREATE INDEX idx_edges_source ON edges(project_id, source);
			CREATE INDEX idx_edges_target ON edges(project_id, target);

			CREATE TABLE milestones (
				project_id VARCHAR(255) NOT NULL REFERENCES projects(id),
				id VARCHAR(255) NOT NULL,
				title TEXT NOT NULL,
				date VARCHAR(10) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				linked_nodes JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (project_id, id)
			);
		`,
		2: `
			CREATE TABLE action_history (
				seq BIGSERIAL PRIMARY KEY,
				id VARCHAR(255) NOT NULL UNIQUE,
				project_id VARCHAR(255) NOT NULL REFERENCES projects(id),
				node_id VARCHAR(255) NOT NULL,
				action_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				result JSONB,
				error_message TEXT NOT NULL DEFAULT '',
				executed_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_action_history_node ON action_history(project_id, node_id, executed_at DESC);
		`,
	}
}
