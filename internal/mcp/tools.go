package mcp

// schema is a JSON Schema fragment for a tool's input.
type schema map[string]any

// toolDef describes one callable tool for tools/list.
type toolDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema schema `json:"inputSchema"`
}

type toolList struct {
	Tools []toolDef `json:"tools"`
}

// toolDefinitions returns the five tools the server exposes. Descriptions
// are phrased for LLM clients deciding which tool to call.
func toolDefinitions() toolList {
	return toolList{Tools: []toolDef{
		{
			Name:        "scan_stats",
			Description: "Get file statistics for a directory: total files, total size, breakdown by extension, and largest files.",
			InputSchema: schema{
				"type": "object",
				"properties": schema{
					"directory": schema{
						"type":        "string",
						"description": "Directory path to scan",
					},
					"top_n": schema{
						"type":        "integer",
						"description": "Number of largest files to return",
						"default":     10,
					},
					"recursive": schema{
						"type":        "boolean",
						"description": "Scan subdirectories",
						"default":     true,
					},
				},
				"required": []string{"directory"},
			},
		},
		{
			Name:        "find_duplicates",
			Description: "Find duplicate files by content hash (blake3). Groups files by size first, then hashes only potential duplicates for speed.",
			InputSchema: schema{
				"type": "object",
				"properties": schema{
					"directory": schema{
						"type":        "string",
						"description": "Directory path to scan",
					},
					"min_size": schema{
						"type":        "integer",
						"description": "Minimum file size in bytes to consider",
						"default":     1,
					},
					"recursive": schema{
						"type":        "boolean",
						"description": "Scan subdirectories",
						"default":     true,
					},
				},
				"required": []string{"directory"},
			},
		},
		{
			Name:        "search_files",
			Description: "Search for files by name pattern, content, size range, and date range. Filters are applied cheapest-first for speed.",
			InputSchema: schema{
				"type": "object",
				"properties": schema{
					"directory": schema{
						"type":        "string",
						"description": "Directory path to search",
					},
					"name": schema{
						"type":        "string",
						"description": "Glob pattern for file names (e.g. '*.rs', '*.{js,ts}')",
					},
					"content": schema{
						"type":        "string",
						"description": "Search file contents for this string (case-insensitive)",
					},
					"min_size": schema{
						"type":        "string",
						"description": "Minimum file size (e.g. '1KB', '10MB')",
					},
					"max_size": schema{
						"type":        "string",
						"description": "Maximum file size (e.g. '100MB', '1GB')",
					},
					"newer": schema{
						"type":        "string",
						"description": "Files modified after this time (e.g. '2024-01-01', '7d', '24h')",
					},
					"older": schema{
						"type":        "string",
						"description": "Files modified before this time (e.g. '2024-01-01', '7d', '24h')",
					},
					"recursive": schema{
						"type":        "boolean",
						"description": "Search subdirectories",
						"default":     true,
					},
				},
				"required": []string{"directory"},
			},
		},
		{
			Name:        "organize_files",
			Description: "Organize files into folders by type, date, or size. Supports dry-run mode to preview changes without moving files.",
			InputSchema: schema{
				"type": "object",
				"properties": schema{
					"directory": schema{
						"type":        "string",
						"description": "Directory to organize",
					},
					"by": schema{
						"type":        "string",
						"description": "Organization strategy: 'type', 'date', or 'size'",
						"enum":        []string{"type", "date", "size"},
						"default":     "type",
					},
					"dry_run": schema{
						"type":        "boolean",
						"description": "Preview changes without moving files",
						"default":     true,
					},
					"mode": schema{
						"type":        "string",
						"description": "Collision handling: 'skip', 'rename', or 'overwrite'",
						"enum":        []string{"skip", "rename", "overwrite"},
						"default":     "rename",
					},
					"recursive": schema{
						"type":        "boolean",
						"description": "Process subdirectories",
						"default":     true,
					},
					"output": schema{
						"type":        "string",
						"description": "Output directory (default: organize in-place)",
					},
				},
				"required": []string{"directory"},
			},
		},
		{
			Name:        "build_index",
			Description: "Build the file name index for a directory and save it to the cache, replacing any previous copy. Returns the indexed root and file count.",
			InputSchema: schema{
				"type": "object",
				"properties": schema{
					"directory": schema{
						"type":        "string",
						"description": "Directory path to index",
					},
				},
				"required": []string{"directory"},
			},
		},
	}}
}
