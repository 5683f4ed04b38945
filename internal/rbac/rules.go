package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"feed:view",
		"progress:report",
		"nav:advance",
		"assignment:ack",
		"assignment:view",
		"quiz:answer",
		"quiz:submit",
	},
	"teacher": {
		"feed:view",
		"assignment:view",
		"progress:view-all",
		"submissions:view",
		"submission:grade",
		"content:manage",
	},
	"admin": {
		"*", // everything
	},
}
