/*
Package file loads stories from YAML files.

A story file has an optional name, initial scope values and a list of steps.
Each step is a mapping with exactly one kind key; a bare nested list is a Group.

	name: greeting
	scope:
	  who: world
	story:
	  - print: "hello {{.who}}"
	  - delay: 500ms
	  - action: exec
	    args: {tool: ask}
	  - switch: result
	    cases:
	      yes: [{print: "great"}]
	      "*": {print: "maybe later"}
	  - group:
	      - wait: ready
	      - live: 1s
	        do: [{log: "still waiting"}]

Kinds: print, log, set, action (with args and save), delay, wait, sequence,
group, loop, ignore, switch (with cases), live (with do) and behavior. Any step
may carry a name; "+name" or "name" gives it its own scope and "-name" shares
its parent's.

A behavior step ticks a behavior tree (see package btree) once per update and
saves "success" or "failure" under save, or "result":

	- behavior:
	    selector:
	      - check: has_key
	      - not: {check: locked}
	    save: door
*/
package file
