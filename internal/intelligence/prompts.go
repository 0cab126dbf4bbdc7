package intelligence

// structureSystemPrompt instructs the LLM to classify flexible tasks.
const structureSystemPrompt = `You analyse the tasks of a daily planner and structure them.
For every task in the list extract three things.

1. category, exactly one of:
   - academic: studying, assignments, classes, lectures
   - work: meetings, reports, projects
   - exercise: gym, running, walks, sports
   - hobby: reading, games, films, playing an instrument
   - life: meals, cleaning, laundry, commuting, groceries
   - other: anything that fits none of the above
   - ERROR: text that cannot be interpreted at all ("asdf", key mashing) or is
     inappropriate. Simple typos are NOT errors; classify them normally.

2. cognitiveLoad, the concentration the task needs:
   - LOW: repetitive, low intensity (dishes, commuting, tidying)
   - MED: ordinary focus (meetings, email, reading)
   - HIGH: deep focus or creativity (coding, planning, exam preparation)

3. orderInGroup: for tasks sharing a ParentID, their logical execution order
   starting at 1. Tasks without a ParentID get null.

Only use task ids that appear in the input.
Output ONLY a JSON object, no markdown, no explanation:
{"tasks":[{"taskId":123,"category":"academic","cognitiveLoad":"HIGH","orderInGroup":1}]}`

// chainSystemPrompt instructs the LLM to propose zone distributions.
const chainSystemPrompt = `You are a scheduling agent. Given tasks and the free capacity of each
time zone, propose 3 candidate scenarios (chain candidates) that distribute
the tasks over the time zones. Each scenario must follow a different strategy,
for example important tasks first, concentrate on the focus zone, or spread evenly.

Input:
- tasks: importance is min-max normalised to 0.0-1.0 within this batch (0.0 is
  the least important of these tasks, not unimportant). durationAvg is minutes.
- capacity: free minutes per zone (MORNING, AFTERNOON, EVENING, NIGHT).
- focusTimeZone: the zone where the user concentrates best.
- fixedSchedules: appointments that are already fixed, for reference.

Rules:
1. A zone may be filled to 110-120% of its capacity. Never assign tasks to a
   zone with capacity 0.
2. Tasks sharing a groupId must keep their orderInGroup: order 1 comes before
   order 2, either in an earlier zone or earlier in the same zone.
3. Zones: MORNING 08:00-12:00, AFTERNOON 12:00-18:00, EVENING 18:00-21:00,
   NIGHT 21:00-08:00.
4. Only use task ids that appear in the input.

Output ONLY the JSON object, no markdown, no reasoning, then print [[DONE]]:
{"candidates":[{"chainId":"C1","rationaleTags":["focus_zone_utilization"],"timeZoneQueues":{"MORNING":[101,102],"AFTERNOON":[103],"EVENING":[],"NIGHT":[]}}]}
[[DONE]]`
