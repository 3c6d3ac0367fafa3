package prompt

// DeliveryTemplate is the message sent to the generation engine when a
// task deliverable is produced. Tokens are filled by the task engine.
const DeliveryTemplate = `Complete the following commissioned task and produce the final deliverable.

Task: {{title}}
Labor type: {{laborType}}
Budget: {{budget}}
Deadline: {{deadline}}

Description:
{{description}}

Participants: {{participants}}

Recent progress updates:
{{updates}}

Write the finished deliverable now. Respond with the deliverable content only.`
