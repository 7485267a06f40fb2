package events

const callStateNotification = `<?xml version="1.0" encoding="UTF-8"?>
<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"
  xmlns:wsnt="http://docs.oasis-open.org/wsn/b-2"
  xmlns:event2n="http://www.2n.cz/2013/event">
  <s:Body>
    <wsnt:Notify>
      <wsnt:NotificationMessage>
        <wsnt:Message>
          <event2n:EventMessage>
            <event2n:Id>7</event2n:Id>
            <event2n:Timestamp>2016-12-03T12:10:10Z</event2n:Timestamp>
            <event2n:EventName>CallStateChanged</event2n:EventName>
            <event2n:Data>
              <event2n:CallId>1</event2n:CallId>
              <event2n:State>Ringing</event2n:State>
            </event2n:Data>
          </event2n:EventMessage>
        </wsnt:Message>
      </wsnt:NotificationMessage>
    </wsnt:Notify>
  </s:Body>
</s:Envelope>`
